// Package docstore implements the document-store collaborator backed by a
// local directory tree, one subdirectory per customer.
package docstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"loan-workers/internal/common/errors"
	"loan-workers/internal/models"
)

// Store lists and manages a customer's loan documents.
type Store interface {
	ListDocuments(ctx context.Context, customerID string) ([]models.Document, error)
	SaveDocument(ctx context.Context, customerID, name string, data []byte) error
	DeleteDocument(ctx context.Context, customerID, name string) error
}

// AllowedExtensions are the file types accepted for upload.
var AllowedExtensions = []string{
	".pdf", ".docx", ".doc", ".txt", ".json", ".xlsx", ".xls", ".csv", ".png", ".jpg", ".jpeg",
}

// ExtensionAllowed reports whether the filename's extension is accepted.
func ExtensionAllowed(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// DirStore is a Store rooted at a local directory.
type DirStore struct {
	root string
}

func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

func (s *DirStore) customerDir(customerID string) string {
	// Keep traversal characters out of the path.
	safe := filepath.Base(customerID)
	return filepath.Join(s.root, safe)
}

// ListDocuments returns every document in the customer's folder with its
// size and inferred category. A missing folder is an empty list, not an
// error.
func (s *DirStore) ListDocuments(ctx context.Context, customerID string) ([]models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := s.customerDir(customerID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Document{}, nil
		}
		return nil, errors.NewDocstoreUnavailableError(err)
	}

	docs := make([]models.Document, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		docs = append(docs, models.Document{
			Name:      entry.Name(),
			SizeBytes: info.Size(),
			Category:  Categorize(entry.Name()),
		})
	}

	return docs, nil
}

// SaveDocument writes the document into the customer's folder, creating it
// if needed. Files with disallowed extensions are rejected.
func (s *DirStore) SaveDocument(ctx context.Context, customerID, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !ExtensionAllowed(name) {
		return errors.NewInputInvalidError("filename", fmt.Sprintf("extension not allowed: %s", filepath.Ext(name)))
	}

	dir := s.customerDir(customerID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewDocstoreUnavailableError(err)
	}

	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.NewDocstoreUnavailableError(err)
	}
	return nil
}

// DeleteDocument removes a document from the customer's folder.
func (s *DirStore) DeleteDocument(ctx context.Context, customerID, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(s.customerDir(customerID), filepath.Base(name))
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errors.NewInputInvalidError("name", "document does not exist")
		}
		return errors.NewDocstoreUnavailableError(err)
	}
	return nil
}

// Categorize infers a document's category from keywords in its filename.
func Categorize(filename string) models.DocumentCategory {
	name := strings.ToLower(filename)

	switch {
	case strings.Contains(name, "aadhaar"), strings.Contains(name, "adhaar"),
		strings.Contains(name, "pan"), strings.Contains(name, "passport"):
		return models.CategoryIdentity
	case strings.Contains(name, "form 16"), strings.Contains(name, "form16"),
		strings.Contains(name, "pay slip"), strings.Contains(name, "payslip"),
		strings.Contains(name, "salary"):
		return models.CategoryIncome
	case strings.Contains(name, "bank"):
		return models.CategoryBanking
	case strings.Contains(name, "cibil"), strings.Contains(name, "credit"):
		return models.CategoryCredit
	case strings.Contains(name, "property"), strings.Contains(name, "sale deed"),
		strings.Contains(name, "registry"):
		return models.CategoryProperty
	case strings.Contains(name, "utility"), strings.Contains(name, "rental"),
		strings.Contains(name, "address"):
		return models.CategoryAddress
	default:
		return models.CategoryOther
	}
}

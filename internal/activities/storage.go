package activities

import (
	"context"
	"errors"

	"github.com/drawbridge-ai/drawbridge/internal/session"
	"github.com/drawbridge-ai/drawbridge/internal/store"
)

// SaveDocumentInput is the input for the SaveDocument activity.
type SaveDocumentInput struct {
	XML string `json:"xml"`
}

// LoadDocumentOutput is the output from the LoadDocument activity.
type LoadDocumentOutput struct {
	XML   string `json:"xml,omitempty"`
	Found bool   `json:"found"`
}

// StorageActivities persists the working diagram so a session can resume
// after the workflow or worker restarts.
type StorageActivities struct {
	store *store.Store
}

// NewStorageActivities creates storage activities backed by the given store.
func NewStorageActivities(s *store.Store) *StorageActivities {
	return &StorageActivities{store: s}
}

// SaveDocument writes the current diagram XML to the document slot.
func (a *StorageActivities) SaveDocument(ctx context.Context, input SaveDocumentInput) error {
	return a.store.Set(session.DocumentKey, input.XML)
}

// LoadDocument reads the diagram XML from the document slot. A missing
// document is not an error; Found reports whether one existed.
func (a *StorageActivities) LoadDocument(ctx context.Context) (LoadDocumentOutput, error) {
	xml, err := a.store.Get(session.DocumentKey)
	if errors.Is(err, store.ErrNotFound) {
		return LoadDocumentOutput{}, nil
	}
	if err != nil {
		return LoadDocumentOutput{}, err
	}
	return LoadDocumentOutput{XML: xml, Found: true}, nil
}

// DeleteDocument clears the document slot.
func (a *StorageActivities) DeleteDocument(ctx context.Context) error {
	return a.store.Delete(session.DocumentKey)
}

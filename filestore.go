package reliosdk

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileContactStore persists snapshots as JSON files on disk.
// Layout: {baseDir}/contacts/{contact_id}.json
type FileContactStore struct {
	BaseDir string
}

// NewFileContactStore creates a FileContactStore at the given directory.
func NewFileContactStore(baseDir string) *FileContactStore {
	return &FileContactStore{BaseDir: baseDir}
}

func (s *FileContactStore) contactsDir() string {
	return filepath.Join(s.BaseDir, "contacts")
}

func (s *FileContactStore) path(contactID string) string {
	return filepath.Join(s.contactsDir(), contactID+".json")
}

func (s *FileContactStore) Load(contactID string) (*ContactSnapshot, error) {
	data, err := os.ReadFile(s.path(contactID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot %s: %w", contactID, err)
	}
	var snap ContactSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %s: %w", contactID, err)
	}
	return &snap, nil
}

func (s *FileContactStore) Save(snapshot *ContactSnapshot) error {
	if snapshot == nil || snapshot.Contact == nil || snapshot.Contact.ContactID == "" {
		return fmt.Errorf("snapshot missing contact id")
	}
	if err := os.MkdirAll(s.contactsDir(), 0755); err != nil {
		return fmt.Errorf("create contacts dir: %w", err)
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", snapshot.Contact.ContactID, err)
	}
	if err := os.WriteFile(s.path(snapshot.Contact.ContactID), data, 0644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", snapshot.Contact.ContactID, err)
	}
	return nil
}

func (s *FileContactStore) Delete(contactID string) error {
	if err := os.Remove(s.path(contactID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete snapshot %s: %w", contactID, err)
	}
	return nil
}

func (s *FileContactStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.contactsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".json") {
			ids = append(ids, strings.TrimSuffix(name, ".json"))
		}
	}
	sort.Strings(ids)
	return ids, nil
}

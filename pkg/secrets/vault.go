package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	gkp "github.com/tobischo/gokeepasslib/v3"
)

const vaultName = "certa"

// Vault is a Provider backed by a .kdbx file. Every write is flushed to
// disk before it returns.
type Vault struct {
	mu      sync.Mutex
	db      *gkp.Database
	file    string
	keyFile string
	pending bool
}

// NewWithPaths opens the database at dbPath with the key file at keyPath,
// creating either one when it does not exist yet.
func NewWithPaths(dbPath, keyPath string) (Provider, error) {
	v := &Vault{file: dbPath, keyFile: keyPath}
	if err := v.bootstrap(); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Vault) bootstrap() error {
	for _, p := range []string{v.file, v.keyFile} {
		if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
			return fmt.Errorf("secrets: create directories: %w", err)
		}
	}
	if missing(v.keyFile) {
		if err := writeKeyFile(v.keyFile); err != nil {
			return fmt.Errorf("secrets: generate key file: %w", err)
		}
	}
	creds, err := gkp.NewKeyCredentials(v.keyFile)
	if err != nil {
		return fmt.Errorf("secrets: parse key file: %w", err)
	}

	if missing(v.file) {
		v.db = emptyDatabase(creds)
		if err := v.save(); err != nil {
			return fmt.Errorf("secrets: create database: %w", err)
		}
		return nil
	}
	if err := v.load(creds); err != nil {
		return fmt.Errorf("secrets: open database: %w", err)
	}
	return nil
}

func missing(path string) bool {
	_, err := os.Stat(path)
	return errors.Is(err, os.ErrNotExist)
}

func emptyDatabase(creds *gkp.DBCredentials) *gkp.Database {
	db := gkp.NewDatabase(gkp.WithDatabaseKDBXVersion4())
	db.Credentials = creds
	db.Content.Meta.DatabaseName = vaultName
	root := gkp.NewGroup()
	root.Name = vaultName
	db.Content.Root.Groups = []gkp.Group{root}
	return db
}

func (v *Vault) load(creds *gkp.DBCredentials) error {
	f, err := os.Open(v.file)
	if err != nil {
		return err
	}
	defer f.Close()

	db := gkp.NewDatabase(gkp.WithDatabaseKDBXVersion4())
	db.Credentials = creds
	if err := gkp.NewDecoder(f).Decode(db); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := db.UnlockProtectedEntries(); err != nil {
		return fmt.Errorf("unlock: %w", err)
	}
	if len(db.Content.Root.Groups) == 0 {
		root := gkp.NewGroup()
		root.Name = vaultName
		db.Content.Root.Groups = []gkp.Group{root}
	}
	v.db = db
	v.pending = false
	return nil
}

// save re-locks protected values for encoding and writes the file.
func (v *Vault) save() error {
	if err := v.db.LockProtectedEntries(); err != nil {
		return fmt.Errorf("secrets: lock entries: %w", err)
	}
	defer v.db.UnlockProtectedEntries()

	f, err := os.OpenFile(v.file, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("secrets: write database: %w", err)
	}
	defer f.Close()

	if err := gkp.NewEncoder(f).Encode(v.db); err != nil {
		return fmt.Errorf("secrets: encode database: %w", err)
	}
	v.pending = false
	return nil
}

// keyFileXML is the KeePass 2.0 key file layout read by KeePassXC and
// gokeepasslib.
const keyFileXML = `<?xml version="1.0" encoding="utf-8"?>
<KeyFile>
	<Meta>
		<Version>2.0</Version>
	</Meta>
	<Key>
		<Data Hash="%s">%s</Data>
	</Key>
</KeyFile>
`

func writeKeyFile(path string) error {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return err
	}
	sum := sha256.Sum256(key)
	hash := strings.ToUpper(hex.EncodeToString(sum[:4]))
	data := strings.ToUpper(hex.EncodeToString(key))
	return os.WriteFile(path, []byte(fmt.Sprintf(keyFileXML, hash, data)), 0o600)
}

// Get returns a copy of the entry at path.
func (v *Vault) Get(path string) (*Entry, error) {
	p, err := parsePath(path)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	g := v.environment(p, false)
	if g == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	i := indexOf(g, p.name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return decodeEntry(g.Entries[i]), nil
}

// Put creates or replaces the entry at path. The entry title always
// follows the last path segment.
func (v *Vault) Put(path string, entry *Entry) error {
	p, err := parsePath(path)
	if err != nil {
		return err
	}
	e := *entry
	if p.section == BackendSection {
		if err := normaliseBackend(p, &e); err != nil {
			return err
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	g := v.environment(p, true)
	encoded := encodeEntry(&e, p.name)
	if i := indexOf(g, p.name); i >= 0 {
		g.Entries[i] = encoded
	} else {
		g.Entries = append(g.Entries, encoded)
	}
	v.pending = true
	return v.save()
}

// Delete removes the entry at path.
func (v *Vault) Delete(path string) error {
	p, err := parsePath(path)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	g := v.environment(p, false)
	i := -1
	if g != nil {
		i = indexOf(g, p.name)
	}
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	g.Entries = append(g.Entries[:i], g.Entries[i+1:]...)
	v.pending = true
	return v.save()
}

// List returns every section/environment/name path starting with prefix.
func (v *Vault) List(prefix string) ([]string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var out []string
	for _, section := range v.root().Groups {
		for _, env := range section.Groups {
			for _, e := range env.Entries {
				p := entryPath{section: section.Name, environment: env.Name, name: e.GetTitle()}.String()
				if strings.HasPrefix(p, prefix) {
					out = append(out, p)
				}
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// Close flushes any unsaved change.
func (v *Vault) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.pending {
		return nil
	}
	return v.save()
}

func (v *Vault) root() *gkp.Group {
	return &v.db.Content.Root.Groups[0]
}

// environment returns the group holding p's entries. With create set the
// section and environment groups are added when missing; otherwise a
// missing level yields nil.
func (v *Vault) environment(p entryPath, create bool) *gkp.Group {
	section := child(v.root(), p.section, create)
	if section == nil {
		return nil
	}
	return child(section, p.environment, create)
}

func child(parent *gkp.Group, name string, create bool) *gkp.Group {
	for i := range parent.Groups {
		if parent.Groups[i].Name == name {
			return &parent.Groups[i]
		}
	}
	if !create {
		return nil
	}
	g := gkp.NewGroup()
	g.Name = name
	parent.Groups = append(parent.Groups, g)
	return &parent.Groups[len(parent.Groups)-1]
}

func indexOf(g *gkp.Group, name string) int {
	for i := range g.Entries {
		if g.Entries[i].GetTitle() == name {
			return i
		}
	}
	return -1
}

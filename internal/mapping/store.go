package mapping

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/gofrs/flock"

	"github.com/agentstation/membermatch/pkg/constants"
	"github.com/agentstation/membermatch/pkg/errors"
	"github.com/agentstation/membermatch/pkg/logging"
)

// Store persists mapping templates.
type Store interface {
	// List returns every template ordered by name.
	List(ctx context.Context) ([]Mapping, error)
	// Get returns the named template or a NotFoundError.
	Get(ctx context.Context, name string) (*Mapping, error)
	// Save validates and stores m. An existing template with the same name is
	// replaced only when replace is set.
	Save(ctx context.Context, m *Mapping, replace bool) error
	// Delete removes the named template or returns a NotFoundError.
	Delete(ctx context.Context, name string) error
}

// file is the on-disk layout.
type file struct {
	Mappings []Mapping `yaml:"mappings"`
}

// FileStore keeps templates in one YAML file. Access is serialized across
// processes with a lock file next to it.
type FileStore struct {
	path string
	lock *flock.Flock
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store backed by path. The file is created on the
// first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, lock: flock.New(path + ".lock")}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// List implements Store.
func (s *FileStore) List(ctx context.Context) ([]Mapping, error) {
	var out []Mapping
	err := s.withLock(ctx, false, func() error {
		f, err := s.read()
		if err != nil {
			return err
		}
		out = f.Mappings
		return nil
	})
	return out, err
}

// Get implements Store.
func (s *FileStore) Get(ctx context.Context, name string) (*Mapping, error) {
	mappings, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	for _, m := range mappings {
		if m.Name == name {
			return &m, nil
		}
	}
	return nil, &errors.NotFoundError{Resource: "mapping", ID: name}
}

// Save implements Store.
func (s *FileStore) Save(ctx context.Context, m *Mapping, replace bool) error {
	if m == nil {
		return &errors.ValidationError{Field: "mapping", Message: "cannot be nil"}
	}
	if err := m.Validate(); err != nil {
		return err
	}
	saved := *m
	saved.Name = strings.TrimSpace(saved.Name)

	return s.withLock(ctx, true, func() error {
		f, err := s.read()
		if err != nil {
			return err
		}
		i := slices.IndexFunc(f.Mappings, func(x Mapping) bool { return x.Name == saved.Name })
		switch {
		case i >= 0 && !replace:
			return errors.WrapResource("save", "mapping", saved.Name, errors.ErrAlreadyExists)
		case i >= 0:
			f.Mappings[i] = saved
		default:
			f.Mappings = append(f.Mappings, saved)
		}
		if err := s.write(f); err != nil {
			return err
		}
		logging.FromContext(ctx).Debug().
			Str("mapping", saved.Name).
			Str("path", s.path).
			Bool("replaced", i >= 0).
			Msg("Saved mapping")
		return nil
	})
}

// Delete implements Store.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	return s.withLock(ctx, true, func() error {
		f, err := s.read()
		if err != nil {
			return err
		}
		i := slices.IndexFunc(f.Mappings, func(x Mapping) bool { return x.Name == name })
		if i < 0 {
			return &errors.NotFoundError{Resource: "mapping", ID: name}
		}
		f.Mappings = slices.Delete(f.Mappings, i, i+1)
		return s.write(f)
	})
}

func (s *FileStore) withLock(ctx context.Context, exclusive bool, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(s.path), err)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.LockTimeout)
	defer cancel()

	var (
		ok  bool
		err error
	)
	if exclusive {
		ok, err = s.lock.TryLockContext(ctx, constants.LockRetryDelay)
	} else {
		ok, err = s.lock.TryRLockContext(ctx, constants.LockRetryDelay)
	}
	if err != nil {
		return errors.WrapIO("lock", s.path, err)
	}
	if !ok {
		return &errors.IOError{Operation: "lock", Path: s.path, Message: "mappings file is locked by another process"}
	}
	defer func() { _ = s.lock.Unlock() }()

	return fn()
}

func (s *FileStore) read() (*file, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &file{}, nil
	}
	if err != nil {
		return nil, errors.WrapIO("read", s.path, err)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapParse("yaml", s.path, err)
	}
	sortByName(f.Mappings)
	return &f, nil
}

// write replaces the file atomically.
func (s *FileStore) write(f *file) error {
	sortByName(f.Mappings)
	data, err := yaml.Marshal(f)
	if err != nil {
		return errors.WrapParse("yaml", s.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".mappings_*.yaml")
	if err != nil {
		return errors.WrapIO("create", "temp file", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return errors.WrapIO("write", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIO("write", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, constants.FilePermissions); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIO("chmod", tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIO("move", s.path, err)
	}
	return nil
}

func sortByName(mappings []Mapping) {
	slices.SortFunc(mappings, func(a, b Mapping) int { return strings.Compare(a.Name, b.Name) })
}

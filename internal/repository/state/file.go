package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	api "github.com/oshokin/gradual/internal/api/grpc/control"
	"github.com/oshokin/gradual/internal/config"
	"github.com/oshokin/gradual/internal/domain/control"
)

// Repository defines persistence operations for the pause switch.
type Repository interface {
	Load(ctx context.Context) (*control.State, error)
	Save(ctx context.Context, state *control.State) error
}

// FileRepository persists the pause switch to a JSON file on disk.
// The file holds the same message the control service returns, encoded
// with protojson.
type FileRepository struct {
	// path is the filesystem location of the JSON state file.
	path string
	// mu protects concurrent access to the state file.
	mu sync.Mutex
}

// ErrNotFound is returned when the state file does not exist yet.
var ErrNotFound = errors.New("state not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the switch from disk.
func (r *FileRepository) Load(_ context.Context) (*control.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var message structpb.Struct
	if err = protojson.Unmarshal(contents, &message); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	state, err := api.FromProtoState(&message)
	if err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	return state, nil
}

// Save writes the switch to disk, replacing the file atomically.
func (r *FileRepository) Save(_ context.Context, state *control.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	marshalOptions := protojson.MarshalOptions{
		Multiline: true,
	}

	data, err := marshalOptions.Marshal(api.ToProtoState(state))
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(r.path), 0o750); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	temporary := r.path + ".tmp"
	if err = os.WriteFile(temporary, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	if err = os.Rename(temporary, r.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	return nil
}

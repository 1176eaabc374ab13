package policy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// ReadTimeout bounds how long a single tier read may take.
const ReadTimeout = 500 * time.Millisecond

// MaxPolicyBytes is the largest policy file that will be read.
const MaxPolicyBytes = 1 << 20

// EnvPolicyPath names the environment variable holding an explicit policy path.
const EnvPolicyPath = "SAFETY_NET_POLICY_PATH"

// WorkspacePolicyFile is the policy path relative to the working directory.
const WorkspacePolicyFile = ".safety-net/effective_policy.json"

// UserCacheSubdir and UserCacheFile locate the per-user cached org policy
// under os.UserCacheDir.
const (
	UserCacheSubdir = "safety-net"
	UserCacheFile   = "org_config.json"
)

// Tier identifies where a policy came from.
type Tier string

const (
	TierEnv       Tier = "env"
	TierWorkspace Tier = "workspace"
	TierUserCache Tier = "user-cache"
	TierDefault   Tier = "default"
)

// Candidate is one tier's policy location.
type Candidate struct {
	Tier Tier   `json:"tier" yaml:"tier"`
	Path string `json:"path" yaml:"path"`
}

// Attempt is the outcome of reading one candidate.
type Attempt struct {
	Tier  Tier   `json:"tier" yaml:"tier"`
	Path  string `json:"path,omitempty" yaml:"path,omitempty"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
	Used  bool   `json:"used" yaml:"used"`

	err error
}

// Err returns the underlying error, if any.
func (a Attempt) Err() error {
	return a.err
}

// Resolution is the effective policy and how it was found.
type Resolution struct {
	Policy   Policy    `json:"policy" yaml:"policy"`
	Source   Tier      `json:"source" yaml:"source"`
	Path     string    `json:"path,omitempty" yaml:"path,omitempty"`
	Attempts []Attempt `json:"attempts" yaml:"attempts"`
}

// Resolver loads policies from the env, workspace, and user-cache tiers.
type Resolver struct {
	// WorkDir is the request's working directory. Empty means the process
	// working directory.
	WorkDir string

	// Getenv, UserCacheDir and ReadFile are replaceable for tests.
	Getenv       func(string) string
	UserCacheDir func() (string, error)
	ReadFile     func(path string, maxBytes int64) ([]byte, error)

	ReadTimeout time.Duration
	MaxBytes    int64
	Logger      *slog.Logger
}

// NewResolver returns a Resolver reading the real environment.
func NewResolver(workDir string) *Resolver {
	return &Resolver{
		WorkDir:      workDir,
		Getenv:       os.Getenv,
		UserCacheDir: os.UserCacheDir,
		ReadFile:     readBounded,
		ReadTimeout:  ReadTimeout,
		MaxBytes:     MaxPolicyBytes,
		Logger:       slog.New(slog.DiscardHandler),
	}
}

// Resolve is shorthand for NewResolver(workDir).Resolve(ctx).
func Resolve(ctx context.Context, workDir string) Resolution {
	return NewResolver(workDir).Resolve(ctx)
}

// Candidates returns the tier locations in precedence order. A tier with no
// computable location has an empty Path.
func (r *Resolver) Candidates() []Candidate {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	out := []Candidate{
		{Tier: TierEnv, Path: getenv(EnvPolicyPath)},
		{Tier: TierWorkspace, Path: filepath.Join(r.WorkDir, WorkspacePolicyFile)},
	}

	cacheDir := r.UserCacheDir
	if cacheDir == nil {
		cacheDir = os.UserCacheDir
	}
	user := Candidate{Tier: TierUserCache}
	if dir, err := cacheDir(); err == nil && dir != "" {
		user.Path = filepath.Join(dir, UserCacheSubdir, UserCacheFile)
	}
	return append(out, user)
}

// Resolve walks the tiers in order and returns the first well-formed policy,
// falling back to Default. It never fails; per-tier problems are recorded in
// Attempts.
func (r *Resolver) Resolve(ctx context.Context) Resolution {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var attempts []Attempt
	for _, c := range r.Candidates() {
		if c.Path == "" {
			attempts = append(attempts, Attempt{Tier: c.Tier, Error: ErrNoPath.Error(), err: ErrNoPath})
			continue
		}

		doc, err := r.readDocument(ctx, c.Path)
		if err != nil {
			lerr := &LoadError{Tier: c.Tier, Path: c.Path, Err: err}
			if !errors.Is(err, ErrPolicyNotFound) {
				logger.Warn("policy tier skipped", "tier", c.Tier, "path", c.Path, "error", err)
			}
			attempts = append(attempts, Attempt{Tier: c.Tier, Path: c.Path, Error: lerr.Error(), err: lerr})
			continue
		}

		attempts = append(attempts, Attempt{Tier: c.Tier, Path: c.Path, Used: true})
		p := FromDocument(doc)
		logger.Debug("policy resolved", "tier", c.Tier, "path", c.Path, "mode", p.Mode)
		return Resolution{Policy: p, Source: c.Tier, Path: c.Path, Attempts: attempts}
	}

	attempts = append(attempts, Attempt{Tier: TierDefault, Used: true})
	logger.Debug("policy resolved", "tier", TierDefault, "mode", ModeBlock)
	return Resolution{Policy: Default(), Source: TierDefault, Attempts: attempts}
}

// readDocument reads and decodes one policy file within the read timeout.
func (r *Resolver) readDocument(ctx context.Context, path string) (map[string]any, error) {
	timeout := r.ReadTimeout
	if timeout <= 0 {
		timeout = ReadTimeout
	}
	maxBytes := r.MaxBytes
	if maxBytes <= 0 {
		maxBytes = MaxPolicyBytes
	}
	read := r.ReadFile
	if read == nil {
		read = readBounded
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := read(path, maxBytes)
		done <- result{data: data, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		return nil, ErrPolicyReadTimeout
	}
	if res.err != nil {
		return nil, res.err
	}

	var v any
	if err := json.Unmarshal(res.data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPolicyMalformed, err)
	}
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, ErrPolicyMalformed
	}
	return doc, nil
}

// readBounded reads a regular file no larger than maxBytes.
func readBounded(path string, maxBytes int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrPolicyNotFound
		}
		return nil, fmt.Errorf("stat policy: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, ErrPolicyNotRegular
	}
	if info.Size() > maxBytes {
		return nil, ErrPolicyTooLarge
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open policy: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrPolicyTooLarge
	}
	return data, nil
}

// Package dotenvx wraps the dotenvx command line tool.
//
// Every cryptographic operation envlens offers is a dotenvx subprocess call:
// decrypting a whole file to JSON, reading or writing a single key, and
// encrypting a file in place. The client performs no decisions beyond
// turning tool output into values and errors.
package dotenvx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	dserrors "github.com/systmms/envlens/internal/errors"
	"github.com/systmms/envlens/internal/logging"
	"github.com/systmms/envlens/internal/metrics"
	pkgexec "github.com/systmms/envlens/pkg/exec"
)

// KeysFileName is the file dotenvx keeps private keys in. It is never
// decorated.
const KeysFileName = ".env.keys"

// Source is what the reveal controller needs from a secret tool.
type Source interface {
	// GetDecrypted returns every decrypted key/value pair of a file.
	GetDecrypted(ctx context.Context, filePath string) (map[string]string, error)
	// GetSecret returns the decrypted value of one key.
	GetSecret(ctx context.Context, key, filePath string) (string, error)
	// SetSecret writes key=value into the file, encrypting it unless
	// encrypt is false.
	SetSecret(ctx context.Context, key, value, filePath string, encrypt bool) error
}

// IsSupportedFile reports whether a file name (or path) is a dotenv file
// envlens should handle.
func IsSupportedFile(name string) bool {
	base := filepath.Base(name)
	return strings.HasPrefix(base, ".env") && base != KeysFileName
}

// Config configures a Client.
type Config struct {
	// BinaryPath pins the dotenvx executable. Empty means discover it.
	BinaryPath string
	// SearchLocal enables looking for node_modules/.bin/dotenvx.
	SearchLocal bool
	// Keys optionally supplies private keys for files whose key is not in
	// the environment or a .env.keys file.
	Keys KeySource
}

// Client runs dotenvx subcommands.
type Client struct {
	config   Config
	logger   *logging.Logger
	executor pkgexec.CommandExecutor
	locator  *Locator
	metrics  *metrics.Recorder

	mu     sync.Mutex
	binary string
}

// NewClient creates a client that runs the real dotenvx binary.
func NewClient(config Config, logger *logging.Logger) *Client {
	return NewClientWithExecutor(config, logger, pkgexec.DefaultExecutor())
}

// NewClientWithExecutor creates a client with a custom executor.
// This is primarily for testing, allowing command execution to be mocked.
func NewClientWithExecutor(config Config, logger *logging.Logger, executor pkgexec.CommandExecutor) *Client {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{
		config:   config,
		logger:   logger,
		executor: executor,
		locator:  NewLocator(config.SearchLocal),
	}
}

// WithLocator replaces the binary locator.
func (c *Client) WithLocator(l *Locator) *Client {
	c.locator = l
	return c
}

// WithMetrics attaches a metrics recorder.
func (c *Client) WithMetrics(m *metrics.Recorder) *Client {
	c.metrics = m
	return c
}

// BinaryPath resolves (once) and returns the dotenvx executable.
func (c *Client) BinaryPath() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.binary != "" {
		return c.binary, nil
	}
	if c.config.BinaryPath != "" {
		c.binary = c.config.BinaryPath
		return c.binary, nil
	}

	path, err := c.locator.Find()
	if err != nil {
		return "", err
	}
	c.logger.Debug("Using dotenvx at %s", path)
	c.binary = path
	return c.binary, nil
}

// GetDecrypted runs: dotenvx get -f FILE
func (c *Client) GetDecrypted(ctx context.Context, filePath string) (map[string]string, error) {
	if err := checkFile(filePath); err != nil {
		return nil, err
	}

	out, err := c.run(ctx, "get", filePath, "get", "-f", filePath)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return map[string]string{}, nil
	}

	var decrypted map[string]string
	if err := json.Unmarshal([]byte(out), &decrypted); err != nil {
		return nil, &dserrors.ToolError{
			Command: "get",
			Stderr:  "unexpected output from dotenvx get (not a JSON object)",
			Err:     err,
		}
	}
	if decrypted == nil {
		decrypted = map[string]string{}
	}

	c.logger.Debug("Decrypted %d keys from %s", len(decrypted), filepath.Base(filePath))
	return decrypted, nil
}

// GetSecret runs: dotenvx get KEY -f FILE
func (c *Client) GetSecret(ctx context.Context, key, filePath string) (string, error) {
	if err := checkFile(filePath); err != nil {
		return "", err
	}

	out, err := c.run(ctx, "get", filePath, "get", key, "-f", filePath)
	if err != nil {
		if isMissingKey(err) {
			return "", fmt.Errorf("%s: %w", key, dserrors.ErrKeyNotFound)
		}
		return "", err
	}

	c.logger.Debug("Fetched %s from %s", key, filepath.Base(filePath))
	return out, nil
}

// SetSecret runs: dotenvx set KEY VALUE -f FILE [--plain]
func (c *Client) SetSecret(ctx context.Context, key, value, filePath string, encrypt bool) error {
	args := []string{"set", key, value, "-f", filePath}
	if !encrypt {
		args = append(args, "--plain")
	}

	if _, err := c.run(ctx, "set", filePath, args...); err != nil {
		return err
	}

	c.logger.Debug("Set %s=%s in %s (encrypted: %t)", key, logging.Secret(value), filepath.Base(filePath), encrypt)
	return nil
}

// Encrypt runs: dotenvx encrypt -f FILE [-k KEY ...]
func (c *Client) Encrypt(ctx context.Context, filePath string, keys ...string) error {
	if err := checkFile(filePath); err != nil {
		return err
	}

	args := []string{"encrypt", "-f", filePath}
	for _, k := range keys {
		args = append(args, "-k", k)
	}

	_, err := c.run(ctx, "encrypt", filePath, args...)
	return err
}

// Convert runs: dotenvx convert -f FILE
func (c *Client) Convert(ctx context.Context, filePath string) (string, error) {
	if err := checkFile(filePath); err != nil {
		return "", err
	}
	return c.run(ctx, "convert", filePath, "convert", "-f", filePath)
}

// Version runs: dotenvx --version
func (c *Client) Version(ctx context.Context) (string, error) {
	return c.run(ctx, "version", "", "--version")
}

// VersionSupported reports whether the installed dotenvx is 1.0.0 or newer.
func (c *Client) VersionSupported(ctx context.Context) (bool, string, error) {
	version, err := c.Version(ctx)
	if err != nil {
		return false, "", err
	}
	c.logger.Debug("Dotenvx Version: %s", version)
	return SupportedVersion(version), version, nil
}

// SupportedVersion reports whether a dotenvx version string has major >= 1.
func SupportedVersion(version string) bool {
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	major, _, _ := strings.Cut(version, ".")
	n, err := strconv.Atoi(major)
	return err == nil && n >= 1
}

// run executes dotenvx and returns trimmed stdout. Any stderr output is
// treated as failure.
func (c *Client) run(ctx context.Context, command, filePath string, args ...string) (string, error) {
	binary, err := c.BinaryPath()
	if err != nil {
		return "", dserrors.WrapCommandNotFound("dotenvx", err)
	}

	env, err := c.privateKeyEnv(filePath)
	if err != nil {
		c.logger.Warn("Could not read private key from keyring: %v", err)
	}

	started := time.Now()
	var stdout, stderr []byte
	if ee, ok := c.executor.(pkgexec.EnvCommandExecutor); ok && len(env) > 0 {
		stdout, stderr, err = ee.ExecuteEnv(ctx, env, binary, args...)
	} else {
		stdout, stderr, err = c.executor.Execute(ctx, binary, args...)
	}

	if launchFailed(err) {
		c.metrics.RecordToolCall(command, err, time.Since(started))
		return "", dserrors.WrapCommandNotFound("dotenvx", fmt.Errorf("%s: %w", binary, err))
	}

	errText := strings.TrimSpace(string(stderr))
	if err != nil || errText != "" {
		toolErr := &dserrors.ToolError{
			Command:  command,
			ExitCode: pkgexec.ExitCode(err),
			Stderr:   errText,
			Err:      err,
		}
		c.metrics.RecordToolCall(command, toolErr, time.Since(started))
		return "", toolErr
	}

	c.metrics.RecordToolCall(command, nil, time.Since(started))
	return strings.TrimSpace(string(stdout)), nil
}

func (c *Client) privateKeyEnv(filePath string) ([]string, error) {
	if c.config.Keys == nil || filePath == "" {
		return nil, nil
	}
	name := PrivateKeyName(filePath)
	if os.Getenv(name) != "" {
		return nil, nil
	}
	value, ok, err := c.config.Keys.PrivateKey(filePath)
	if err != nil || !ok {
		return nil, err
	}
	return []string{name + "=" + value}, nil
}

func checkFile(filePath string) error {
	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", filePath, dserrors.ErrNotFound)
		}
		return err
	}
	return nil
}

// launchFailed reports whether err means the binary could not be started at
// all, as opposed to running and failing.
func launchFailed(err error) bool {
	if err == nil || pkgexec.ExitCode(err) != -1 {
		return false
	}
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

func isMissingKey(err error) bool {
	te, ok := err.(*dserrors.ToolError)
	if !ok {
		return false
	}
	s := strings.ToLower(te.Stderr)
	return strings.Contains(s, "missing_key") || strings.Contains(s, "missing key")
}

var _ Source = (*Client)(nil)

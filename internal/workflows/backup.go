package workflows

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/PolarWolf314/vaultrunner/internal/audit"
	kerrors "github.com/PolarWolf314/vaultrunner/internal/errors"
	"github.com/PolarWolf314/vaultrunner/internal/secretstore"
	"github.com/PolarWolf314/vaultrunner/internal/vault"
)

// BackupOptions configures the backup workflow.
type BackupOptions struct {
	SecretStoreOptions

	// BackupPassword encrypts the archive. It is independent of the vault
	// password and must not be empty.
	BackupPassword string

	// Output defaults to <vault dir>/backups/vault_backup_<timestamp>.enc.
	Output string

	// Namespace is the secret store folder to back up. Defaults to the
	// configured secret namespace.
	Namespace string

	// Now overrides the clock for the archive timestamp.
	Now time.Time
}

// BackupResult describes a written archive.
type BackupResult struct {
	Path        string
	Namespace   string
	SecretCount int
}

// Backup collects every secret under Namespace, recursing into folders, and
// writes them to an encrypted archive.
//
// Returns ErrEmptyPassword if no backup password is supplied.
// Returns ErrSecretNotFound if the namespace holds no secrets.
func Backup(ctx context.Context, opts BackupOptions) (*BackupResult, error) {
	v, err := openVault(opts.Config)
	if err != nil {
		return nil, err
	}
	if opts.BackupPassword == "" {
		return nil, kerrors.ErrEmptyPassword
	}

	namespace := strings.Trim(opts.Namespace, "/")
	if namespace == "" {
		namespace = opts.Config.SecretStore.SecretNamespace
	}
	if err := validateSecretName(namespace); err != nil {
		return nil, err
	}

	store, err := OpenSecretStore(ctx, opts.SecretStoreOptions)
	if err != nil {
		return nil, err
	}

	secrets := make(map[string]string)
	if err := collectSecrets(ctx, store, namespace, secrets); err != nil {
		return nil, err
	}
	if len(secrets) == 0 {
		return nil, fmt.Errorf("%w: no secrets under %s", kerrors.ErrSecretNotFound, namespace)
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	output := opts.Output
	if output == "" {
		output = filepath.Join(v.BackupsDir(), "vault_backup_"+now.UTC().Format("20060102_150405")+".enc")
	}

	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	entry := audit.LogWithUser(OpBackup)
	entry.Path = output

	err = vault.WriteBackup(output, vault.NewBackup(namespace, secrets, now), opts.BackupPassword)
	record(opts.Config, entry, err)
	if err != nil {
		return nil, err
	}

	return &BackupResult{Path: output, Namespace: namespace, SecretCount: len(secrets)}, nil
}

// collectSecrets walks prefix depth first. Names ending in "/" are folders.
func collectSecrets(ctx context.Context, store secretstore.Store, prefix string, out map[string]string) error {
	names, err := store.List(ctx, prefix)
	if err != nil {
		return err
	}

	for _, name := range names {
		child := path.Join(prefix, name)
		if strings.HasSuffix(name, "/") {
			if err := collectSecrets(ctx, store, child, out); err != nil {
				return err
			}
			continue
		}

		value, err := store.Get(ctx, child)
		if err != nil {
			return fmt.Errorf("backing up %s: %w", child, err)
		}
		out[child] = value
	}
	return nil
}

// RestoreOptions configures the restore workflow.
type RestoreOptions struct {
	SecretStoreOptions

	// BackupPassword decrypts the archive.
	BackupPassword string

	// Path is the archive to restore.
	Path string

	// DryRun decrypts and lists the archive without contacting the secret store.
	DryRun bool
}

// RestoreResult describes what was, or with DryRun would be, restored.
type RestoreResult struct {
	Metadata vault.BackupMetadata

	// Paths are the secret paths in the archive, sorted.
	Paths []string

	// Restored counts secrets written before the first failure.
	Restored int
}

// Restore writes every secret in the archive back to its original path.
//
// Returns ErrDecryption for a wrong backup password and ErrFormat if the
// archive is malformed or contains an unsafe path. Writing stops at the
// first failed secret.
func Restore(ctx context.Context, opts RestoreOptions) (*RestoreResult, error) {
	if _, err := openVault(opts.Config); err != nil {
		return nil, err
	}
	if opts.BackupPassword == "" {
		return nil, kerrors.ErrEmptyPassword
	}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	entry := audit.LogWithUser(OpRestore)
	entry.Path = opts.Path

	backup, err := vault.ReadBackup(opts.Path, opts.BackupPassword)
	if err != nil {
		record(opts.Config, entry, err)
		return nil, err
	}

	paths := make([]string, 0, len(backup.Secrets))
	for p := range backup.Secrets {
		if err := validateSecretName(p); err != nil {
			err = fmt.Errorf("%w: archive contains unsafe path %q", kerrors.ErrFormat, p)
			record(opts.Config, entry, err)
			return nil, err
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)

	result := &RestoreResult{Metadata: backup.Metadata, Paths: paths}
	if opts.DryRun {
		return result, nil
	}

	store, err := OpenSecretStore(ctx, opts.SecretStoreOptions)
	if err != nil {
		return nil, err
	}

	for _, p := range paths {
		if err := store.Put(ctx, p, backup.Secrets[p]); err != nil {
			err = fmt.Errorf("restoring %s: %w", p, err)
			record(opts.Config, entry, err)
			return result, err
		}
		result.Restored++
	}

	record(opts.Config, entry, nil)
	return result, nil
}

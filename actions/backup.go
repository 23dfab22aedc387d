package actions

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"webup/asfctl/domain"
	"webup/asfctl/utils"
)

const stampLayout = "20060102-150405"

// ErrNoBackup is returned when a restore finds no backup set.
var ErrNoBackup = errors.New("no backup set found")

// Backups takes and reads the backup sets of an installation.
type Backups struct {
	logger zerolog.Logger
	runID  string
	Now    func() time.Time
}

func NewBackups(logger zerolog.Logger, runID string) *Backups {
	return &Backups{
		logger: logger.With().Str("component", "backup").Logger(),
		runID:  runID,
		Now:    time.Now,
	}
}

// Files lists what a backup of state copies.
func Files(state domain.InstallationState) []string {
	files := []string{}
	paths := append([]string{state.Manifest, state.DaemonConfig}, state.VHosts...)
	for _, path := range append(paths, state.Deployment) {
		if path != "" {
			files = append(files, path)
		}
	}
	return append(files, state.Credentials...)
}

// Take copies the files of a present installation into a new backup set.
// Existing sets are never touched.
func (b *Backups) Take(layout domain.Layout, state domain.InstallationState) (domain.BackupSet, error) {
	now := b.Now()
	set := domain.BackupSet{RunID: b.runID, CreatedAt: now.UTC().Truncate(time.Second)}

	if err := os.MkdirAll(layout.BackupsDir(), 0700); err != nil {
		return set, &domain.BackupError{Path: layout.BackupsDir(), Err: err}
	}

	stamp, dir, err := createSetDir(layout.BackupsDir(), now.Format(stampLayout))
	if err != nil {
		return set, &domain.BackupError{Path: layout.BackupsDir(), Err: err}
	}
	set.Stamp, set.Dir = stamp, dir

	for _, src := range Files(state) {
		info, err := os.Stat(src)
		if err != nil {
			return set, &domain.BackupError{Path: src, Err: err}
		}

		copyName := backupName(layout.Root, src)
		if err := utils.CopyFileContents(src, filepath.Join(dir, copyName)); err != nil {
			return set, &domain.BackupError{Path: src, Err: err}
		}
		set.Files = append(set.Files, domain.BackupEntry{Source: src, Copy: copyName, Mode: info.Mode().Perm()})
	}

	manifest, err := yaml.Marshal(set)
	if err != nil {
		return set, &domain.BackupError{Path: filepath.Join(dir, domain.BackupManifestName), Err: err}
	}
	if err := utils.WriteFileAtomic(filepath.Join(dir, domain.BackupManifestName), manifest, 0600); err != nil {
		return set, &domain.BackupError{Path: filepath.Join(dir, domain.BackupManifestName), Err: err}
	}

	b.logger.Info().Str("dir", dir).Int("files", len(set.Files)).Msg("backup set created")
	return set, nil
}

// createSetDir creates backups/<stamp>, appending -2, -3... when it exists.
func createSetDir(backupsDir, stamp string) (string, string, error) {
	candidate := stamp
	for n := 2; ; n++ {
		dir := filepath.Join(backupsDir, candidate)
		err := os.Mkdir(dir, 0700)
		if err == nil {
			return candidate, dir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		candidate = fmt.Sprintf("%s-%d", stamp, n)
	}
}

// backupName is the path of the copy of src inside a backup set. Files
// outside the installation root are kept under external/.
func backupName(root, src string) string {
	rel, err := filepath.Rel(root, src)
	if err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return filepath.Join("external", filepath.Clean(src))
}

// List returns the backup sets of an installation, oldest first.
func (b *Backups) List(layout domain.Layout) ([]domain.BackupSet, error) {
	entries, err := os.ReadDir(layout.BackupsDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	sets := []domain.BackupSet{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		set, err := readSet(filepath.Join(layout.BackupsDir(), entry.Name()))
		if err != nil {
			b.logger.Warn().Err(err).Str("dir", entry.Name()).Msg("skipping unreadable backup set")
			continue
		}
		sets = append(sets, set)
	}

	sort.Slice(sets, func(i, j int) bool {
		if !sets[i].CreatedAt.Equal(sets[j].CreatedAt) {
			return sets[i].CreatedAt.Before(sets[j].CreatedAt)
		}
		return sets[i].Stamp < sets[j].Stamp
	})
	return sets, nil
}

// Find returns the set named stamp, or the latest one when stamp is empty.
func (b *Backups) Find(layout domain.Layout, stamp string) (domain.BackupSet, error) {
	if stamp != "" {
		if filepath.Base(stamp) != stamp {
			return domain.BackupSet{}, fmt.Errorf("invalid backup stamp %q", stamp)
		}
		set, err := readSet(filepath.Join(layout.BackupsDir(), stamp))
		if errors.Is(err, os.ErrNotExist) {
			return set, fmt.Errorf("%w: %s", ErrNoBackup, stamp)
		}
		return set, err
	}

	sets, err := b.List(layout)
	if err != nil {
		return domain.BackupSet{}, err
	}
	if len(sets) == 0 {
		return domain.BackupSet{}, fmt.Errorf("%w in %s", ErrNoBackup, layout.BackupsDir())
	}
	return sets[len(sets)-1], nil
}

func readSet(dir string) (domain.BackupSet, error) {
	var set domain.BackupSet

	data, err := os.ReadFile(filepath.Join(dir, domain.BackupManifestName))
	if err != nil {
		return set, fmt.Errorf("read backup manifest: %w", err)
	}
	if err := yaml.Unmarshal(data, &set); err != nil {
		return set, fmt.Errorf("parse %s: %w", filepath.Join(dir, domain.BackupManifestName), err)
	}
	set.Dir = dir
	return set, nil
}

// Restore copies every file of set back to its original path.
func (b *Backups) Restore(set domain.BackupSet) ([]string, error) {
	restored := []string{}
	for _, entry := range set.Files {
		if err := restoreEntry(set, entry); err != nil {
			return restored, err
		}
		restored = append(restored, entry.Source)
	}

	b.logger.Info().Str("dir", set.Dir).Int("files", len(restored)).Msg("backup set restored")
	return restored, nil
}

func restoreEntry(set domain.BackupSet, entry domain.BackupEntry) error {
	if err := utils.CopyFileContents(filepath.Join(set.Dir, entry.Copy), entry.Source); err != nil {
		return fmt.Errorf("unable to restore %s: %w", entry.Source, err)
	}
	if entry.Mode != 0 {
		return os.Chmod(entry.Source, entry.Mode)
	}
	return nil
}

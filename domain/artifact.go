package domain

import (
	"os"
	"time"
)

// Owner of a written file. A nil owner keeps the writing user.
type Owner struct {
	UID int
	GID int
}

// Artifact is a generated document and where it goes.
type Artifact struct {
	Name    string
	Path    string
	Content []byte
	Mode    os.FileMode
	Owner   *Owner
}

// BackupSet is a timestamped copy of the files of a present installation.
type BackupSet struct {
	Stamp     string        `yaml:"stamp"`
	Dir       string        `yaml:"-"`
	RunID     string        `yaml:"run_id"`
	CreatedAt time.Time     `yaml:"created_at"`
	Files     []BackupEntry `yaml:"files"`
}

// BackupEntry maps an original path to its copy inside the backup set.
type BackupEntry struct {
	Source string      `yaml:"source"`
	Copy   string      `yaml:"copy"`
	Mode   os.FileMode `yaml:"mode"`
}

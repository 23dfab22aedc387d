package actions

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhoonb/archivex"

	"webup/asfctl/utils"
)

const (
	archiveSuffix   = ".tar.gz"
	encryptedSuffix = ".enc"
)

// Export archives the installation root, backups excluded, into output.
// With a passphrase the archive is encrypted and '.enc' is appended.
// It returns the path of the written file.
func (o *Operator) Export(output string, passphrase []byte) (string, error) {
	if err := o.requireInstallation(); err != nil {
		return "", err
	}
	if output == "" {
		output = fmt.Sprintf("asf-export-%s%s", o.Backups.Now().Format(stampLayout), archiveSuffix)
	}
	if !strings.HasSuffix(output, archiveSuffix) {
		output += archiveSuffix
	}

	// prepare a staging copy of the root, without the backups
	staging, err := os.MkdirTemp("", "asfctl-export")
	if err != nil {
		return "", fmt.Errorf("unable to create a staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := o.stage(filepath.Join(staging, "asf")); err != nil {
		return "", err
	}

	tar := new(archivex.TarFile)
	if err := tar.Create(output); err != nil {
		return "", fmt.Errorf("unable to create %s: %w", output, err)
	}
	if err := tar.AddAll(filepath.Join(staging, "asf"), false); err != nil {
		tar.Close()
		os.Remove(output)
		return "", fmt.Errorf("unable to archive %s: %w", o.Layout.Root, err)
	}
	if err := tar.Close(); err != nil {
		return "", fmt.Errorf("unable to write %s: %w", output, err)
	}
	// it holds the crypt key and the bot credentials
	if err := os.Chmod(output, 0600); err != nil {
		return "", err
	}

	if len(passphrase) == 0 {
		printDone(o.Out, "Exported to %s", output)
		return output, nil
	}

	encrypted := output + encryptedSuffix
	if err := encryptFile(output, encrypted, passphrase); err != nil {
		return "", err
	}
	os.Remove(output)

	printDone(o.Out, "Exported to %s", encrypted)
	return encrypted, nil
}

// stage hard links (or copies, across devices) the files of the root into dir.
func (o *Operator) stage(dir string) error {
	backups := o.Layout.BackupsDir()

	return filepath.Walk(o.Layout.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == backups {
			return filepath.SkipDir
		}

		rel, err := filepath.Rel(o.Layout.Root, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dir, rel)

		// just create the directory
		if info.IsDir() {
			return os.MkdirAll(target, 0700)
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		if err := os.Link(path, target); err == nil {
			return nil
		}
		return utils.CopyFileContents(path, target)
	})
}

// Decrypt reverses an encrypted export. output defaults to input without '.enc'.
func (o *Operator) Decrypt(input, output string, passphrase []byte) (string, error) {
	if output == "" {
		output = strings.TrimSuffix(input, encryptedSuffix)
		if output == input {
			output = input + ".dec"
		}
	}

	in, err := os.Open(input)
	if err != nil {
		return "", err
	}
	defer in.Close()

	tmp := output + ".part"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return "", err
	}
	if err := utils.Decrypt(in, out, passphrase); err != nil {
		out.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("unable to decrypt %s: %w", input, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, output); err != nil {
		os.Remove(tmp)
		return "", err
	}

	printDone(o.Out, "Decrypted to %s", output)
	return output, nil
}

func encryptFile(input, output string, passphrase []byte) error {
	in, err := os.Open(input)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(output, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if err := utils.Encrypt(in, out, passphrase); err != nil {
		out.Close()
		os.Remove(output)
		return fmt.Errorf("unable to encrypt %s: %w", input, err)
	}
	return out.Close()
}

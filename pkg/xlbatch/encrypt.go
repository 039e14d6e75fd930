package xlbatch

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/locvowork/xlfilecreator/pkg/xltemplate"
)

// Encryptor password-protects a finished workbook.
type Encryptor interface {
	// Check reports a *xltemplate.MissingDependencyError when the encryptor
	// cannot run.
	Check(ctx context.Context) error
	// Encrypt writes an encrypted copy of in to out.
	Encrypt(ctx context.Context, password, in, out string) error
}

// DefaultMSOfficeCryptPath is the msoffice-crypt binary looked up on PATH.
const DefaultMSOfficeCryptPath = "msoffice-crypt"

// MSOfficeCrypt runs the msoffice-crypt command line tool once per file.
type MSOfficeCrypt struct {
	Path string
}

func (m MSOfficeCrypt) path() string {
	if m.Path == "" {
		return DefaultMSOfficeCryptPath
	}
	return m.Path
}

func (m MSOfficeCrypt) Check(ctx context.Context) error {
	if _, err := exec.LookPath(m.path()); err != nil {
		return &xltemplate.MissingDependencyError{Tool: m.path(), Err: err}
	}
	return nil
}

func (m MSOfficeCrypt) Encrypt(ctx context.Context, password, in, out string) error {
	cmd := exec.CommandContext(ctx, m.path(), "-e", "-p", password, in, out)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("msoffice-crypt %s: %w: %s", in, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// NativeEncryptor encrypts with excelize's built-in ECMA-376 agile encryption.
type NativeEncryptor struct{}

func (NativeEncryptor) Check(context.Context) error { return nil }

func (NativeEncryptor) Encrypt(_ context.Context, password, in, out string) error {
	f, err := excelize.OpenFile(in)
	if err != nil {
		return fmt.Errorf("opening %s: %w", in, err)
	}
	defer f.Close()
	if err := f.SaveAs(out, excelize.Options{Password: password}); err != nil {
		return fmt.Errorf("encrypting %s: %w", in, err)
	}
	return nil
}

// NewEncryptor picks an encryptor by name: "msoffice" or "native".
func NewEncryptor(name, msofficePath string) (Encryptor, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "native":
		return NativeEncryptor{}, nil
	case "msoffice":
		return MSOfficeCrypt{Path: msofficePath}, nil
	}
	return nil, &xltemplate.ConfigurationError{
		Component: "encryptor",
		Key:       name,
		Err:       fmt.Errorf("must be msoffice or native"),
	}
}

package xlbatch

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/xlfilecreator/pkg/xltemplate"
)

func TestManifest_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.csv")
	entries := []PasswordEntry{
		{FileID: "AcmeID1001", Filename: "AcmeID1001-North-20260102.xlsx", Value: "North", Password: "ACME615RON"},
		{FileID: "AcmeID1002", Filename: "AcmeID1002-South, East-20260102.xlsx", Value: "South, East", Password: "ACME1107HTU"},
	}
	require.NoError(t, WriteManifest(path, "Region", entries))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "File ID,Filename,Region,Password\n")
	assert.Contains(t, string(raw), `"South, East"`)

	got, err := ReadManifest(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "AcmeID1002-South, East-20260102.xlsx", got[1].Filename)
	assert.Equal(t, "ACME1107HTU", got[1].Password)
	assert.Empty(t, got[1].Value)

	_, err = ReadManifest(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestZipDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.xlsx"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.xlsx"), []byte("bb"), 0o644))

	archive, err := ZipDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir+".zip", archive)
	assert.NoDirExists(t, dir)

	zr, err := zip.OpenReader(archive)
	require.NoError(t, err)
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"out/a.xlsx", "out/b.xlsx"}, names)
}

func TestCheckFeasibility(t *testing.T) {
	orders, reference := ordersTemplate(t), referenceTemplate(t)

	require.NoError(t, CheckFeasibility([]*xltemplate.Template{orders, reference}, "Region", []string{"North", "South"}))

	err := CheckFeasibility([]*xltemplate.Template{orders, reference}, "Region", []string{"X", "Y"})
	var dataErr *xltemplate.DataIntegrityError
	require.True(t, errors.As(err, &dataErr))
	assert.Equal(t, "ORDERS", dataErr.Template)
	assert.Equal(t, "X", dataErr.Value)
	assert.Contains(t, err.Error(), `"X"`)

	err = CheckFeasibility([]*xltemplate.Template{reference}, "Owner", []string{"ann"})
	var cfgErr *xltemplate.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestNewEncryptor(t *testing.T) {
	e, err := NewEncryptor("", "")
	require.NoError(t, err)
	assert.IsType(t, NativeEncryptor{}, e)

	e, err = NewEncryptor("MSOffice", "/opt/msoffice/bin/msoffice-crypt")
	require.NoError(t, err)
	assert.Equal(t, MSOfficeCrypt{Path: "/opt/msoffice/bin/msoffice-crypt"}, e)

	_, err = NewEncryptor("rot13", "")
	assert.Error(t, err)
}

func TestMSOfficeCrypt_Check(t *testing.T) {
	err := MSOfficeCrypt{Path: filepath.Join(t.TempDir(), "msoffice-crypt")}.Check(context.Background())
	var depErr *xltemplate.MissingDependencyError
	require.True(t, errors.As(err, &depErr))
	assert.Contains(t, depErr.Tool, "msoffice-crypt")
}

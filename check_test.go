package initramfs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLookPath makes lookPath succeed for every tool except those in missing.
func stubLookPath(t *testing.T, missing ...string) {
	t.Helper()
	orig := lookPath
	lookPath = func(file string) (string, error) {
		for _, m := range missing {
			if m == file {
				return "", errors.New("executable file not found in $PATH")
			}
		}
		return "/usr/bin/" + file, nil
	}
	t.Cleanup(func() { lookPath = orig })
}

func TestRequirements(t *testing.T) {
	tests := []struct {
		name string
		cfg  BuildConfig
		want []string
	}{
		{
			name: "root without signing",
			cfg:  BuildConfig{},
			want: []string{"dracut", "install", "modules directory"},
		},
		{
			name: "sudo and signing",
			cfg:  BuildConfig{UseSudo: true, SigningKey: "/k", SigningCert: "/c"},
			want: []string{"dracut", "install", "sbsign", "signing key", "signing certificate", "sudo", "modules directory"},
		},
		{
			name: "half configured signing",
			cfg:  BuildConfig{SigningKey: "/k"},
			want: []string{"dracut", "install", "modules directory"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Requirements(tt.cfg))
		})
	}
}

func TestCheck_AllSatisfied(t *testing.T) {
	stubLookPath(t)
	dir := t.TempDir()
	key := filepath.Join(dir, "MOK.key")
	cert := filepath.Join(dir, "MOK.crt")
	writeFile(t, key, "key")
	writeFile(t, cert, "cert")

	cfg := BuildConfig{
		UseSudo:     true,
		SigningKey:  key,
		SigningCert: cert,
		Paths:       Paths{ModulesDir: dir},
	}
	assert.NoError(t, Check(cfg))
}

func TestCheck_MissingTool(t *testing.T) {
	stubLookPath(t, "sbsign")
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "k"), "key")
	writeFile(t, filepath.Join(dir, "c"), "cert")

	err := Check(BuildConfig{
		SigningKey:  filepath.Join(dir, "k"),
		SigningCert: filepath.Join(dir, "c"),
		Paths:       Paths{ModulesDir: dir},
	})

	var re *RequirementError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "sbsign", re.Requirement)
	assert.Equal(t, Diagnose("sbsign"), re.Reason)
}

func TestCheck_FirstFailureWins(t *testing.T) {
	stubLookPath(t, "dracut", "sudo")

	err := Check(BuildConfig{UseSudo: true, Paths: Paths{ModulesDir: t.TempDir()}})

	var re *RequirementError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "dracut", re.Requirement)
}

func TestCheck_UnreadableSigningKey(t *testing.T) {
	stubLookPath(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "c"), "cert")

	err := Check(BuildConfig{
		SigningKey:  filepath.Join(dir, "missing.key"),
		SigningCert: filepath.Join(dir, "c"),
		Paths:       Paths{ModulesDir: dir},
	})

	var re *RequirementError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "signing key", re.Requirement)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCheck_ModulesDir(t *testing.T) {
	stubLookPath(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "modules")
	writeFile(t, file, "")

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(dir, "nope")},
		{"not a directory", file},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(BuildConfig{Paths: Paths{ModulesDir: tt.path}})

			var re *RequirementError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, "modules directory", re.Requirement)
		})
	}
}

func TestDiagnose(t *testing.T) {
	assert.Contains(t, Diagnose("dracut"), "pacman -S dracut")
	assert.Contains(t, Diagnose("sbsign"), "sbsigntools")
	assert.Equal(t, "mkinitcpio not found in PATH", Diagnose("mkinitcpio"))
}

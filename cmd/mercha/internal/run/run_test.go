package run_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/go-mercha/mercha/cmd/mercha/internal/run"
	"github.com/go-mercha/mercha/internal/lcg"
	"github.com/go-mercha/mercha/mercha"
	"github.com/go-mercha/mercha/mercha/chacha20"
)

func writeMetaFile(t *testing.T, dir, inputName string, length uint64, key [32]byte, nonce [12]byte, result [64]byte, generateInfo uint64) string {
	t.Helper()
	path := filepath.Join(dir, "meta.txt")
	contents := fmt.Sprintf(
		"File name:\n   %s\nLength:\n   %d\nKey:\n   0x%x\nNonce:\n   0x%x\nResult:\n   0x%x\nGenerate info:\n   %d\n",
		inputName, length, key, nonce, result, generateInfo,
	)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestVerifyPassesOnMatchingDigest(t *testing.T) {
	dir := t.TempDir()
	var key [chacha20.KeySize]byte
	var nonce [chacha20.NonceSize]byte
	for i := range key {
		key[i] = byte(i)
	}

	input := make([]byte, 64)
	for i := range input {
		input[i] = byte(i * 7)
	}
	inputPath := filepath.Join(dir, "input.bin")
	if err := os.WriteFile(inputPath, input, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	workingInput := bytes.Clone(input)
	var want [64]byte
	if err := mercha.Mercha(key, nonce, workingInput, want[:]); err != nil {
		t.Fatalf("Mercha: %v", err)
	}

	metaPath := writeMetaFile(t, dir, inputPath, 64, key, nonce, want, 0)

	cmd := run.NewRootCommand(zap.NewNop())
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"verify", metaPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("Pass this test!")) {
		t.Errorf("output = %q, want it to contain %q", out.String(), "Pass this test!")
	}
}

func TestVerifyFailsOnMismatchedDigest(t *testing.T) {
	dir := t.TempDir()
	var key [chacha20.KeySize]byte
	var nonce [chacha20.NonceSize]byte

	inputPath := filepath.Join(dir, "input.bin")
	if err := os.WriteFile(inputPath, make([]byte, 64), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var wrongResult [64]byte
	wrongResult[0] = 0xff
	metaPath := writeMetaFile(t, dir, inputPath, 64, key, nonce, wrongResult, 0)

	cmd := run.NewRootCommand(zap.NewNop())
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"verify", metaPath})

	if err := cmd.Execute(); err == nil {
		t.Error("want error for mismatched digest")
	}
	if !bytes.Contains(out.Bytes(), []byte("Fail this test!")) {
		t.Errorf("output = %q, want it to contain %q", out.String(), "Fail this test!")
	}
}

func TestGenWritesDeterministicInputFile(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "generated.bin")
	var key [chacha20.KeySize]byte
	var nonce [chacha20.NonceSize]byte
	var result [64]byte
	metaPath := writeMetaFile(t, dir, inputPath, 128, key, nonce, result, 7)

	cmd := run.NewRootCommand(zap.NewNop())
	cmd.SetArgs([]string{"gen", metaPath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	got, err := os.ReadFile(inputPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != 128 {
		t.Errorf("generated file length = %d, want 128", len(got))
	}
	if !bytes.Equal(got, lcg.Generate(7, 128)) {
		t.Error("generated file does not match the LCG stream for seed 7")
	}
}

func TestVerifyReportsMissingInputFile(t *testing.T) {
	dir := t.TempDir()
	var key [chacha20.KeySize]byte
	var nonce [chacha20.NonceSize]byte
	var result [64]byte
	metaPath := writeMetaFile(t, dir, filepath.Join(dir, "does-not-exist.bin"), 64, key, nonce, result, 0)

	cmd := run.NewRootCommand(zap.NewNop())
	cmd.SetArgs([]string{"verify", metaPath})
	if err := cmd.Execute(); err == nil {
		t.Error("want error for missing input file")
	}
}

package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

const (
	defaultLockPath  = "./secret/file.txt.lock"
	defaultClearPath = "clear.txt"
	lockSuffix       = ".lock"
)

// Result holds everything learned while decoding one lock file
type Result struct {
	Key     Key    // Recovered key, in decoding order
	Found   int    // Number of key bytes found, KeySize unless the input is too short
	Decoded []byte // XOR-decoded bytes
	Text    string // Decoded bytes interpreted as UTF-16LE
	Output  []byte // Text re-encoded as UTF-16LE, the content of the clear file
}

// readLockFile reads the whole input file
func readLockFile(path string) ([]byte, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, newPathError(ErrInputNotFound, path, err)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, newPathError(ErrInputUnreadable, path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, newPathError(ErrInputUnreadable, path, err)
	}

	log.Infof("read %s from %s", humanize.Bytes(uint64(len(data))), path)
	return data, nil
}

// warnKeyUnderrun logs when the input was too short to carry the whole key
func warnKeyUnderrun(found int) {
	if found < KeySize {
		log.Warningf("only %d of %d key bytes found, missing bytes default to 0xff", found, KeySize)
	}
}

// decodeLock recovers the key and decodes data. obs may be nil.
func decodeLock(data []byte, obs Observer) (*Result, error) {
	key, found := recoverKey(data)
	warnKeyUnderrun(found)
	if obs != nil {
		obs.KeyRecovered(key)
	}

	decoded := decodeChunks(data, key, obs)
	log.Debugf("decoded %d chunks", (len(decoded)+ChunkSize-1)/ChunkSize)

	text, output, err := finalizeText(decoded)
	if err != nil {
		return nil, err
	}
	if obs != nil {
		obs.TextDecoded(text)
	}

	return &Result{
		Key:     key,
		Found:   found,
		Decoded: decoded,
		Text:    text,
		Output:  output,
	}, nil
}

// decodeLockFile decodes inPath and writes the clear text to outPath.
// Nothing is written when decoding fails.
func decodeLockFile(inPath, outPath string, obs Observer) (*Result, error) {
	data, err := readLockFile(inPath)
	if err != nil {
		return nil, err
	}

	result, err := decodeLock(data, obs)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to decode %s", inPath)
	}

	if err := writeOutputFile(outPath, result.Output); err != nil {
		return nil, err
	}
	return result, nil
}

// writeOutputFile writes data to a temporary file next to path and renames
// it into place, so a failed write leaves no partial output. An existing
// file keeps its permissions; a new one gets 0644.
func writeOutputFile(path string, data []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return newPathError(ErrOutputWrite, path, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return newPathError(ErrOutputWrite, path, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		return newPathError(ErrOutputWrite, path, err)
	}
	if err := tmp.Close(); err != nil {
		return newPathError(ErrOutputWrite, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return newPathError(ErrOutputWrite, path, err)
	}
	committed = true

	log.Infof("wrote %s to %s", humanize.Bytes(uint64(len(data))), path)
	return nil
}

// lockText produces the lock file bytes for UTF-8 text
func lockText(text string, key Key) ([]byte, error) {
	plain, err := encodeText(text)
	if err != nil {
		return nil, err
	}

	// Key recovery reads the high bytes of the first KeySize characters
	for i := 3; i < len(plain) && i < 3+2*KeySize; i += 2 {
		if plain[i] != 0 {
			log.Warningf("character at offset %d is outside Latin-1, the key will not be recoverable", i-1)
			break
		}
	}
	if len(plain) < 3+2*KeySize-1 {
		log.Warningf("text is shorter than %d characters, the key will not be recoverable", KeySize)
	}

	return encodeChunks(plain, key), nil
}

// lockFile reads UTF-8 text from inPath and writes the obfuscated form to outPath
func lockFile(inPath, outPath string, key Key) error {
	data, err := readLockFile(inPath)
	if err != nil {
		return err
	}

	locked, err := lockText(string(data), key)
	if err != nil {
		return errors.Wrapf(err, "unable to lock %s", inPath)
	}

	return writeOutputFile(outPath, locked)
}

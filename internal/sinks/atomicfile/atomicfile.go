// Package atomicfile replaces files so readers never observe a partial write.
package atomicfile

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/errors"
)

// Write calls fill with a buffered writer on a temporary file next to path,
// then renames the temporary file over path. On any failure path is left
// untouched and the temporary file is removed. Every failure is an
// errors.IOError with Operation "write".
func Write(path string, fill func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.WrapIO("write", path, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err := fill(bw); err != nil {
		return asWriteError(path, err)
	}
	if err := bw.Flush(); err != nil {
		return errors.WrapIO("write", path, err)
	}
	if err := tmp.Chmod(constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapIO("write", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// asWriteError keeps typed errors from fill and wraps the rest.
func asWriteError(path string, err error) error {
	var ioErr *errors.IOError
	if errors.As(err, &ioErr) || errors.IsCanceled(err) {
		return err
	}
	return errors.WrapIO("write", path, err)
}

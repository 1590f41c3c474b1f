// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package upload acquires the CSV file a submit sends: from disk for the CLI,
// from a multipart form for the web UI.
package upload

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	tozd "gitlab.com/tozd/go/errors"

	cferrors "csvflow/cli/internal/errors"
	"csvflow/cli/internal/operation"
)

// Extension is the only accepted file suffix. The match is case-sensitive.
const Extension = ".csv"

// FormField is the multipart field holding the file.
const FormField = "file"

// Accept reports whether a file named name may be selected.
func Accept(name string) bool {
	return strings.HasSuffix(name, Extension)
}

// Open opens the CSV at path for a submit. The caller closes the returned closer
// once the request has been sent.
func Open(path string) (*operation.File, io.Closer, error) {
	name := filepath.Base(path)
	if !Accept(name) {
		return nil, nil, cferrors.New(cferrors.Validation, operation.MsgNoFile)
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, cferrors.Wrap(cferrors.Validation, operation.MsgNoFile, err)
		}
		return nil, nil, tozd.Errorf("open %s: %w", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, tozd.Errorf("stat %s: %w", path, err)
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, nil, cferrors.New(cferrors.Validation, operation.MsgNoFile)
	}
	return &operation.File{Name: name, Reader: f}, f, nil
}

// FromMultipart extracts the uploaded file from a browser form, reading at most
// maxBytes of request body. A missing file, or one that Accept rejects, yields
// a nil File and no error: the selection is simply empty.
func FromMultipart(r *http.Request, maxBytes int64) (*operation.File, error) {
	if r.MultipartForm == nil {
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			if errors.Is(err, http.ErrNotMultipart) {
				return nil, nil
			}
			return nil, tozd.Errorf("parse upload: %w", err)
		}
	}

	fh := firstFile(r.MultipartForm)
	if fh == nil || !Accept(fh.Filename) {
		return nil, nil
	}

	src, err := fh.Open()
	if err != nil {
		return nil, tozd.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, tozd.Errorf("read upload %s: %w", fh.Filename, err)
	}
	return &operation.File{Name: filepath.Base(fh.Filename), Reader: bytes.NewReader(data)}, nil
}

func firstFile(form *multipart.Form) *multipart.FileHeader {
	if form == nil {
		return nil
	}
	files := form.File[FormField]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

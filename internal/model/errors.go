package model

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"net/textproto"
	"strings"
	"syscall"
)

// ErrorCategory groups run failures for reporting in the download history.
type ErrorCategory string

const (
	ErrorCategoryNone       ErrorCategory = ""
	ErrorCategoryNetwork    ErrorCategory = "network"
	ErrorCategoryNotFound   ErrorCategory = "not_found"
	ErrorCategoryPermission ErrorCategory = "permission"
	ErrorCategoryFilesystem ErrorCategory = "filesystem"
	ErrorCategoryMetadata   ErrorCategory = "metadata"
	ErrorCategoryCancelled  ErrorCategory = "cancelled"
	ErrorCategoryUnknown    ErrorCategory = "unknown"
)

// FTP reply codes that identify the failure cause.
const (
	ftpNotLoggedIn         = 530
	ftpNeedAccountForStore = 532
	ftpFileUnavailable     = 550
)

// MetadataError marks failures caused by the content of a GEO record rather
// than by transport or the local filesystem.
type MetadataError struct {
	Err error
}

func (e *MetadataError) Error() string {
	return e.Err.Error()
}

func (e *MetadataError) Unwrap() error {
	return e.Err
}

// ClassifyError maps err onto an ErrorCategory. It inspects the whole chain.
func ClassifyError(err error) ErrorCategory {
	if err == nil {
		return ErrorCategoryNone
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorCategoryCancelled
	}

	var me *MetadataError
	if errors.As(err, &me) {
		return ErrorCategoryMetadata
	}

	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		switch tpErr.Code {
		case ftpFileUnavailable:
			return ErrorCategoryNotFound
		case ftpNotLoggedIn, ftpNeedAccountForStore:
			return ErrorCategoryPermission
		}
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		if errors.Is(err, fs.ErrPermission) {
			return ErrorCategoryPermission
		}
		return ErrorCategoryFilesystem
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrorCategoryNetwork
	}
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return ErrorCategoryNetwork
	}

	// String heuristics for errors that lost their type on the way up.
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"connection refused",
		"broken pipe",
		"no such host",
		"i/o timeout",
	} {
		if strings.Contains(msg, p) {
			return ErrorCategoryNetwork
		}
	}
	if strings.Contains(msg, "unexpected status 404") {
		return ErrorCategoryNotFound
	}

	return ErrorCategoryUnknown
}

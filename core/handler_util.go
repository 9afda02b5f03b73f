package core

import (
	"bytes"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// maxBodyBytes caps auth request bodies.
const maxBodyBytes = 1 << 20

var (
	// errInvalidJSON is returned by readBody for bodies that are not a JSON object.
	errInvalidJSON = errors.New("invalid json")
	// errBodyTooLarge is returned by readBody when the body exceeds maxBodyBytes.
	errBodyTooLarge = errors.New("request body too large")
)

// respondError sends unified error payload {"error": {"code", "message"}}.
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}

// respondAuthError maps an auth or store error to its HTTP representation.
func respondAuthError(c *gin.Context, err error) {
	var ae *AuthError
	if errors.As(err, &ae) {
		respondError(c, statusFor(ae.Kind), codeFor(ae.Kind), ae.Message())
		return
	}
	log.Printf("auth request failed: %v", err)
	if errors.Is(err, ErrStoreUnavailable) {
		respondError(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "credential store unavailable")
		return
	}
	respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal error")
}

func statusFor(kind error) int {
	switch kind {
	case ErrMissingField, ErrInvalidField, ErrDuplicateAccount, ErrAccountNotFound, ErrPasswordMismatch:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func codeFor(kind error) string {
	switch kind {
	case ErrMissingField:
		return "MISSING_FIELD"
	case ErrInvalidField:
		return "INVALID_FIELD"
	case ErrDuplicateAccount:
		return "DUPLICATE_ACCOUNT"
	case ErrAccountNotFound:
		return "ACCOUNT_NOT_FOUND"
	case ErrPasswordMismatch:
		return "PASSWORD_MISMATCH"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}

// readBody decodes a JSON object or urlencoded form. An empty body decodes to
// an empty map so that field validation reports what is missing.
func readBody(c *gin.Context) (map[string]any, error) {
	body := map[string]any{}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	if c.ContentType() == binding.MIMEPOSTForm {
		if err := c.Request.ParseForm(); err != nil {
			return nil, bodyReadError(err)
		}
		for k, vs := range c.Request.PostForm {
			if len(vs) > 0 {
				body[k] = vs[0]
			}
		}
		return body, nil
	}

	raw, err := c.GetRawData()
	if err != nil {
		return nil, bodyReadError(err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return body, nil
	}
	if err := binding.JSON.BindBody(raw, &body); err != nil {
		return nil, errInvalidJSON
	}
	if body == nil {
		body = map[string]any{}
	}
	return body, nil
}

func bodyReadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errBodyTooLarge
	}
	return err
}

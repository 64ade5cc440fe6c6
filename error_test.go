package matchcrawl_test

import (
	"errors"
	"testing"

	"github.com/fwojciec/matchcrawl"
	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	t.Parallel()

	t.Run("returns code of application error", func(t *testing.T) {
		t.Parallel()
		err := matchcrawl.Errorf(matchcrawl.ECONFLICT, "already stored")
		assert.Equal(t, matchcrawl.ECONFLICT, matchcrawl.ErrorCode(err))
	})

	t.Run("returns code of wrapped application error", func(t *testing.T) {
		t.Parallel()
		inner := matchcrawl.Errorf(matchcrawl.ENOTFOUND, "missing")
		assert.Equal(t, matchcrawl.ENOTFOUND, matchcrawl.ErrorCode(wrap(inner)))
	})

	t.Run("returns EINTERNAL for non-application error", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, matchcrawl.EINTERNAL, matchcrawl.ErrorCode(errors.New("boom")))
	})

	t.Run("returns empty string for nil", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", matchcrawl.ErrorCode(nil))
	})
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	t.Run("returns message of application error", func(t *testing.T) {
		t.Parallel()
		err := matchcrawl.Errorf(matchcrawl.EINVALID, "season %q malformed", "2425")
		assert.Equal(t, `season "2425" malformed`, matchcrawl.ErrorMessage(err))
	})

	t.Run("returns generic message for non-application error", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Internal error", matchcrawl.ErrorMessage(errors.New("boom")))
	})

	t.Run("returns empty string for nil", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", matchcrawl.ErrorMessage(nil))
	})
}

func TestError_Error(t *testing.T) {
	t.Parallel()

	err := matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "page gone")
	assert.Equal(t, "matchcrawl error: code=unavailable message=page gone", err.Error())
}

// wrap hides an error behind a plain fmt-style wrapper.
func wrap(err error) error {
	return &wrapped{err: err}
}

type wrapped struct {
	err error
}

func (w *wrapped) Error() string { return "wrapped: " + w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }

// Package service holds the domain operations.  Every service receives the
// persistence port explicitly, raises apperr kinds at the point a rule is
// violated and never touches HTTP types.
package service

import (
    "errors"

    "github.com/iliyamo/eventmate-api/internal/apperr"
    "github.com/iliyamo/eventmate-api/internal/store"
)

// storeErr translates a store failure.  ErrNotFound becomes NotFound with
// msg, ErrDuplicate becomes AlreadyExists with dupMsg when given, and
// anything else is wrapped as Upstream.
func storeErr(err error, msg string, dupMsg ...string) error {
    switch {
    case err == nil:
        return nil
    case apperr.KindOf(err) != "":
        return err
    case errors.Is(err, store.ErrNotFound):
        return apperr.NotFound(msg)
    case errors.Is(err, store.ErrDuplicate) && len(dupMsg) > 0:
        return apperr.AlreadyExists(dupMsg[0])
    }
    return apperr.Upstream("store failure", err)
}

func isNotFound(err error) bool { return errors.Is(err, store.ErrNotFound) }

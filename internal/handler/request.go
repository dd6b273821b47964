package handler

import (
    "bytes"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "strconv"
    "strings"

    validation "github.com/go-ozzo/ozzo-validation/v4"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/eventmate-api/internal/apperr"
    "github.com/iliyamo/eventmate-api/internal/middleware"
    "github.com/iliyamo/eventmate-api/internal/model"
    "github.com/iliyamo/eventmate-api/internal/store"
)

const (
    defaultLimit = 10
    maxLimit     = 100
    maxBodyBytes = 1 << 20
)

// bind decodes the request into dst, rejecting unknown fields, and runs
// its ozzo rules.  Multipart requests carry the JSON document in the
// "data" form field.
func bind(c echo.Context, dst any) error {
    var raw []byte
    ct := c.Request().Header.Get(echo.HeaderContentType)
    if strings.HasPrefix(ct, echo.MIMEMultipartForm) {
        if err := c.Request().ParseMultipartForm(maxBodyBytes); err != nil {
            return apperr.Validation("invalid multipart body")
        }
        raw = []byte(c.Request().FormValue("data"))
    } else {
        b, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes+1))
        if err != nil {
            return apperr.Validation("could not read request body")
        }
        if len(b) > maxBodyBytes {
            return apperr.Validation("request body too large")
        }
        raw = b
    }
    if len(bytes.TrimSpace(raw)) == 0 {
        raw = []byte("{}")
    }
    if err := decodeStrict(raw, dst); err != nil {
        return err
    }
    if v, ok := dst.(validation.Validatable); ok {
        if err := v.Validate(); err != nil {
            return apperr.Validation(err.Error())
        }
    }
    return nil
}

func decodeStrict(raw []byte, dst any) error {
    dec := json.NewDecoder(bytes.NewReader(raw))
    dec.DisallowUnknownFields()
    if err := dec.Decode(dst); err != nil {
        var ute *json.UnmarshalTypeError
        switch {
        case errors.As(err, &ute):
            return apperr.Validation(fmt.Sprintf("%s has the wrong type", ute.Field))
        case strings.HasPrefix(err.Error(), "json: unknown field"):
            return apperr.Validation(strings.TrimPrefix(err.Error(), "json: "))
        }
        return apperr.Validation("malformed JSON body")
    }
    if dec.More() {
        return apperr.Validation("malformed JSON body")
    }
    return nil
}

// pageFrom reads page, limit, sortBy and sortOrder.  sortBy must be one of
// sortable.
func pageFrom(c echo.Context, sortable ...string) (store.Page, error) {
    p := store.Page{Page: 1, Limit: defaultLimit, SortOrder: "desc"}
    if v := c.QueryParam("page"); v != "" {
        n, err := strconv.Atoi(v)
        if err != nil || n < 1 {
            return p, apperr.Validation("page must be a positive integer")
        }
        p.Page = n
    }
    if v := c.QueryParam("limit"); v != "" {
        n, err := strconv.Atoi(v)
        if err != nil || n < 1 {
            return p, apperr.Validation("limit must be a positive integer")
        }
        p.Limit = min(n, maxLimit)
    }
    if v := c.QueryParam("sortBy"); v != "" {
        allowed := false
        for _, s := range sortable {
            allowed = allowed || s == v
        }
        if !allowed {
            return p, apperr.Validation("sortBy must be one of " + strings.Join(sortable, ", "))
        }
        p.SortBy = v
    }
    switch v := strings.ToLower(c.QueryParam("sortOrder")); v {
    case "", "desc":
    case "asc":
        p.SortOrder = "asc"
    default:
        return p, apperr.Validation("sortOrder must be asc or desc")
    }
    return p, nil
}

// caller returns the identity set by JWTAuth.  Routes without JWTAuth never
// call it.
func caller(c echo.Context) (model.Identity, error) {
    id, ok := middleware.CurrentIdentity(c)
    if !ok {
        return model.Identity{}, apperr.Unauthenticated("authentication required")
    }
    return id, nil
}

func errInvalidQuery(name string) error {
    return apperr.Validation("invalid value for query parameter " + name)
}

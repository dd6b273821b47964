package handler

import (
    "net/http"

    validation "github.com/go-ozzo/ozzo-validation/v4"
    "github.com/go-ozzo/ozzo-validation/v4/is"
    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/eventmate-api/internal/model"
    "github.com/iliyamo/eventmate-api/internal/service"
    "github.com/iliyamo/eventmate-api/internal/store"
)

// UserHandler serves /api/users.
type UserHandler struct {
    base
    users *service.UserService
}

func NewUserHandler(users *service.UserService, log *zap.Logger) *UserHandler {
    return &UserHandler{base: base{log: log}, users: users}
}

// profileReq is the allow-list of self-editable profile fields.
type profileReq struct {
    Name      *string  `json:"name"`
    Bio       *string  `json:"bio"`
    Interests []string `json:"interests"`
    Location  *string  `json:"location"`
    Image     *string  `json:"image"`
}

func (r profileReq) Validate() error {
    return validation.ValidateStruct(&r,
        validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 120)),
        validation.Field(&r.Bio, validation.Length(0, 2000)),
        validation.Field(&r.Interests, validation.Length(0, 50), validation.Each(validation.Required, validation.Length(1, 50))),
        validation.Field(&r.Location, validation.Length(0, 255)),
        validation.Field(&r.Image, is.URL),
    )
}

func (r profileReq) patch() service.ProfilePatch {
    return service.ProfilePatch{Name: r.Name, Bio: r.Bio, Interests: r.Interests, Location: r.Location, Image: r.Image}
}

// adminUserReq adds the role to the profile fields.
type adminUserReq struct {
    profileReq
    Role *string `json:"role"`
}

func (r adminUserReq) Validate() error {
    if err := r.profileReq.Validate(); err != nil {
        return err
    }
    return validation.ValidateStruct(&r,
        validation.Field(&r.Role, validation.In(string(model.RoleUser), string(model.RoleHost), string(model.RoleAdmin))),
    )
}

// List is the admin user listing with search, role filter and pagination.
func (h *UserHandler) List(c echo.Context) error {
    p, err := pageFrom(c, "createdAt", "name", "email")
    if err != nil {
        return h.fail(c, err)
    }
    role := model.Role(c.QueryParam("role"))
    if role != "" && !role.Valid() {
        return h.fail(c, errInvalidQuery("role"))
    }
    list, total, err := h.users.List(c.Request().Context(), store.UserFilter{Search: c.QueryParam("search"), Role: role}, p)
    if err != nil {
        return h.fail(c, err)
    }
    return paged(c, "users retrieved", list, p.Page, p.Limit, total)
}

func (h *UserHandler) Get(c echo.Context) error {
    u, err := h.users.Profile(c.Request().Context(), c.Param("id"))
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "user retrieved", u)
}

// UpdateMe edits the caller's own profile.
func (h *UserHandler) UpdateMe(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    var req profileReq
    if err := bind(c, &req); err != nil {
        return h.fail(c, err)
    }
    u, err := h.users.UpdateProfile(c.Request().Context(), id.ID, req.patch())
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "profile updated", u)
}

// Update lets an admin edit any user, including the role.
func (h *UserHandler) Update(c echo.Context) error {
    var req adminUserReq
    if err := bind(c, &req); err != nil {
        return h.fail(c, err)
    }
    var role *model.Role
    if req.Role != nil {
        r := model.Role(*req.Role)
        role = &r
    }
    u, err := h.users.AdminUpdate(c.Request().Context(), c.Param("id"), req.profileReq.patch(), role)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "user updated", u)
}

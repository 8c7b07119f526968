// auth.go: account endpoints. Register, login, logout, token verification
// and profile updates, with the cookie semantics the web frontend relies on.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/phibia/phibia-go/internal/datastore"
	"github.com/phibia/phibia-go/internal/errors"
	"github.com/phibia/phibia-go/internal/security"
)

// registerRequest matches the registration form of the frontend.
type registerRequest struct {
	NombreUsuario string `json:"nombre_usuario"`
	Email         string `json:"email"`
	Password      string `json:"password"`
}

// loginRequest matches the login form of the frontend.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// profileRequest carries optional profile updates; empty fields are ignored.
type profileRequest struct {
	NombreUsuario   string `json:"nombre_usuario"`
	Avatar          string `json:"avatar"`
	BackgroundColor string `json:"background_color"`
}

// Register handles POST /register.
func (c *Controller) Register(ctx echo.Context) error {
	var req registerRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Malformed request body", http.StatusBadRequest)
	}
	if req.NombreUsuario == "" || req.Email == "" || req.Password == "" {
		return c.HandleError(ctx, nil, "Missing data", http.StatusBadRequest)
	}

	if _, err := c.DS.GetUserByEmail(req.Email); err == nil {
		return c.HandleError(ctx, nil, "This email is taken", http.StatusBadRequest)
	} else if !errors.IsNotFound(err) {
		return c.HandleError(ctx, err, "Could not check email", http.StatusInternalServerError)
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return c.HandleError(ctx, err, "Could not process password", http.StatusInternalServerError)
	}

	user := datastore.User{
		Name:         req.NombreUsuario,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := c.DS.CreateUser(&user); err != nil {
		return c.HandleError(ctx, err, "Could not create account", http.StatusInternalServerError)
	}

	c.apiLogger.Info("account registered", "user_id", user.ID)
	return ctx.JSON(http.StatusCreated, map[string]string{"message": "Registration completed"})
}

// Login handles POST /login. Wrong email and wrong password answer the same
// so credentials cannot be probed one field at a time.
func (c *Controller) Login(ctx echo.Context) error {
	var req loginRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Malformed request body", http.StatusBadRequest)
	}
	if req.Email == "" || req.Password == "" {
		return c.HandleError(ctx, nil, "missing data", http.StatusBadRequest)
	}

	user, err := c.DS.GetUserByEmail(req.Email)
	if err != nil {
		if errors.IsNotFound(err) {
			return c.HandleError(ctx, nil, "Wrong password or email", http.StatusUnauthorized)
		}
		return c.HandleError(ctx, err, "Could not load account", http.StatusInternalServerError)
	}
	if !security.CheckPassword(user.PasswordHash, req.Password) {
		return c.HandleError(ctx, nil, "Wrong password or email", http.StatusUnauthorized)
	}

	token, err := c.Tokens.Issue(user.ID)
	if err != nil {
		return c.HandleError(ctx, err, "Could not issue session token", http.StatusInternalServerError)
	}
	ctx.SetCookie(c.Tokens.NewCookie(token))

	return ctx.JSON(http.StatusOK, map[string]any{
		"message":   "Succesful login",
		"user_info": newUserInfo(&user),
	})
}

// Logout handles POST /logout by expiring the cookie.
func (c *Controller) Logout(ctx echo.Context) error {
	ctx.SetCookie(c.Tokens.ClearCookie())
	return ctx.JSON(http.StatusOK, map[string]string{"message": "Logout successful"})
}

// VerifyToken handles GET /verify-token.
func (c *Controller) VerifyToken(ctx echo.Context) error {
	user, err := c.currentUser(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Authentication required", http.StatusUnauthorized)
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"valid":     true,
		"user_info": newUserInfo(&user),
	})
}

// UpdateProfile handles PUT /perfil.
func (c *Controller) UpdateProfile(ctx echo.Context) error {
	user, err := c.currentUser(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Authentication required", http.StatusUnauthorized)
	}

	var req profileRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Malformed request body", http.StatusBadRequest)
	}

	if req.NombreUsuario != "" {
		user.Name = req.NombreUsuario
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	if req.BackgroundColor != "" {
		user.BackgroundColor = req.BackgroundColor
	}

	if err := c.DS.UpdateUser(&user); err != nil {
		return c.HandleError(ctx, err, "Could not update profile", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"message":   "Profile updated",
		"user_info": newUserInfo(&user),
	})
}

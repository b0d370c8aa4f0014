package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/useraccounts/account-api/internal/api/metrics"
	"github.com/useraccounts/account-api/internal/core/domain"
	"github.com/useraccounts/account-api/internal/core/ports"
)

const msgInvalidBody = "Invalid request body"

// AccountHandler exposes the account service under /api/user.
type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// Register creates a new account.
//
// @Summary      Register a new user
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  resultResponse
// @Failure      400   {object}  resultResponse
// @Failure      500   {object}  resultResponse
// @Router       /api/user/register [post]
func (h *AccountHandler) Register(c echo.Context) error {
	const op = "register"
	start := time.Now()

	var req registerRequest
	if res, ok := decode(c, &req); !ok {
		return respond(c, op, start, res)
	}

	return respond(c, op, start, h.service.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}))
}

// Login authenticates an account and returns a session token.
//
// @Summary      Login
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  resultResponse
// @Failure      400   {object}  resultResponse
// @Failure      500   {object}  resultResponse
// @Router       /api/user/login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	const op = "login"
	start := time.Now()

	var req loginRequest
	if res, ok := decode(c, &req); !ok {
		return respond(c, op, start, res)
	}
	return respond(c, op, start, h.service.Login(c.Request().Context(), req.Email, req.Password))
}

// ForgotPassword mails a verification code to the account.
//
// @Summary      Request a password reset code
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  resultResponse
// @Failure      400   {object}  resultResponse
// @Failure      404   {object}  resultResponse
// @Failure      500   {object}  resultResponse
// @Router       /api/user/forgot-password [post]
func (h *AccountHandler) ForgotPassword(c echo.Context) error {
	const op = "forgot_password"
	start := time.Now()

	var req forgotPasswordRequest
	if res, ok := decode(c, &req); !ok {
		return respond(c, op, start, res)
	}
	return respond(c, op, start, h.service.ForgotPassword(c.Request().Context(), req.Email))
}

// VerifyCode redeems a verification code for a password reset token.
//
// @Summary      Verify a reset code
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      verifyCodeRequest  true  "Email and code"
// @Success      200   {object}  resultResponse
// @Failure      400   {object}  resultResponse
// @Failure      404   {object}  resultResponse
// @Failure      500   {object}  resultResponse
// @Router       /api/user/verifyCode [post]
func (h *AccountHandler) VerifyCode(c echo.Context) error {
	const op = "verify_code"
	start := time.Now()

	var req verifyCodeRequest
	if res, ok := decode(c, &req); !ok {
		return respond(c, op, start, res)
	}
	return respond(c, op, start, h.service.VerifyCode(c.Request().Context(), req.Email, req.VerificationCode))
}

// ResetPassword sets a new password using the token returned by VerifyCode.
//
// @Summary      Reset password
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        token  header    string                true  "Reset token"
// @Param        body   body      resetPasswordRequest  true  "New password"
// @Success      200    {object}  resultResponse
// @Failure      400    {object}  resultResponse
// @Failure      401    {object}  resultResponse
// @Failure      500    {object}  resultResponse
// @Router       /api/user/reset-password [post]
func (h *AccountHandler) ResetPassword(c echo.Context) error {
	const op = "reset_password"
	start := time.Now()

	var req resetPasswordRequest
	if res, ok := decode(c, &req); !ok {
		return respond(c, op, start, res)
	}
	return respond(c, op, start, h.service.ResetPassword(c.Request().Context(), ctxToken(c), req.Password))
}

// Edit updates the profile of the authenticated account.
//
// @Summary      Edit profile
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        token  header    string       true  "Session token"
// @Param        body   body      editRequest  true  "Profile"
// @Success      200    {object}  resultResponse
// @Failure      400    {object}  resultResponse
// @Failure      401    {object}  resultResponse
// @Failure      500    {object}  resultResponse
// @Router       /api/user/edit [put]
func (h *AccountHandler) Edit(c echo.Context) error {
	const op = "edit"
	start := time.Now()

	var req editRequest
	if res, ok := decode(c, &req); !ok {
		return respond(c, op, start, res)
	}
	return respond(c, op, start, h.service.Edit(c.Request().Context(), ctxToken(c), ports.EditInput{
		ID:           req.ID,
		Username:     req.Username,
		Email:        req.Email,
		ProfilePhoto: req.ProfilePhoto,
		PhoneToken:   req.PhoneToken,
		PhoneNumber:  req.PhoneNumber,
	}))
}

// Delete removes the authenticated account.
//
// @Summary      Delete account
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        token  header    string         true  "Session token"
// @Param        body   body      deleteRequest  true  "Account id"
// @Success      204
// @Failure      400    {object}  resultResponse
// @Failure      401    {object}  resultResponse
// @Failure      500    {object}  resultResponse
// @Router       /api/user/delete [delete]
func (h *AccountHandler) Delete(c echo.Context) error {
	const op = "delete"
	start := time.Now()

	var req deleteRequest
	if res, ok := decode(c, &req); !ok {
		return respond(c, op, start, res)
	}
	return respond(c, op, start, h.service.Delete(c.Request().Context(), ctxToken(c), req.ID))
}

// decode binds and validates the request body. On failure it returns the
// result to answer with.
func decode(c echo.Context, req any) (domain.Result, bool) {
	if err := c.Bind(req); err != nil {
		return domain.Invalid(msgInvalidBody), false
	}
	if err := c.Validate(req); err != nil {
		return domain.Invalid(err.Error()), false
	}
	return domain.Result{}, true
}

// respond writes res with its own status and records the operation.
func respond(c echo.Context, op string, start time.Time, res domain.Result) error {
	metrics.ObserveOperation(op, string(res.Outcome), time.Since(start))

	if res.Status == http.StatusNoContent {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(res.Status, res)
}

package resumekit

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

type ControllerRoutes struct {
	Landing          string
	Dashboard        string
	ResetPasswordWeb string
	AdminLoginWeb    string
	AdminDashboard   string

	CheckoutInitiate string
	CheckoutOrder    string
	CheckoutVerify   string

	Login         string
	Logout        string
	ForgotPass    string
	SendOTP       string
	VerifyOTP     string
	ResetPassword string

	AdminLogin  string
	AdminLogout string
}

type ControllerViews struct {
	Landing        string
	Dashboard      string
	ResetPassword  string
	AdminLogin     string
	AdminDashboard string
}

// Controller exposes the checkout, account and back office endpoints over
// fiber.
type Controller struct {
	Debug   bool
	Logger  Logger
	Repo    RepositoryManager
	Auther  *Auther
	Mailer  Mailer
	Gateway PaymentGateway
	Config  *Config
	Routes  *ControllerRoutes
	Views   *ControllerViews
}

type ControllerOption func(*Controller) *Controller

func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		Logger: defLogger{},
		Routes: &ControllerRoutes{
			Landing:          "/",
			Dashboard:        "/dashboard",
			ResetPasswordWeb: "/reset-password",
			AdminLoginWeb:    "/admin/login",
			AdminDashboard:   "/admin/dashboard",

			CheckoutInitiate: "/api/checkout/initiate",
			CheckoutOrder:    "/api/checkout/order",
			CheckoutVerify:   "/api/checkout/verify",

			Login:         "/api/auth/login",
			Logout:        "/api/auth/logout",
			ForgotPass:    "/api/auth/forgot-password",
			SendOTP:       "/api/auth/send-otp",
			VerifyOTP:     "/api/auth/verify-otp",
			ResetPassword: "/api/auth/reset-password",

			AdminLogin:  "/api/admin/login",
			AdminLogout: "/api/admin/logout",
		},
		Views: &ControllerViews{
			Landing:        "landing",
			Dashboard:      "dashboard",
			ResetPassword:  "reset_password",
			AdminLogin:     "admin_login",
			AdminDashboard: "admin_dashboard",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in controller...")
	}

	if c.Auther == nil {
		panic("Missing Auther in controller...")
	}

	if c.Config == nil {
		panic("Missing Config in controller...")
	}

	return c
}

func WithControllerLogger(logger Logger) ControllerOption {
	return func(c *Controller) *Controller {
		c.Logger = logger
		return c
	}
}

func WithControllerRepo(repo RepositoryManager) ControllerOption {
	return func(c *Controller) *Controller {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther *Auther) ControllerOption {
	return func(c *Controller) *Controller {
		c.Auther = auther
		return c
	}
}

func WithControllerMailer(mailer Mailer) ControllerOption {
	return func(c *Controller) *Controller {
		c.Mailer = mailer
		return c
	}
}

func WithControllerGateway(gateway PaymentGateway) ControllerOption {
	return func(c *Controller) *Controller {
		c.Gateway = gateway
		return c
	}
}

func WithControllerConfig(cfg *Config) ControllerOption {
	return func(c *Controller) *Controller {
		c.Config = cfg
		return c
	}
}

// RegisterRoutes binds every endpoint and page on the app.
func (a *Controller) RegisterRoutes(app *fiber.App) {
	app.Get(a.Routes.Landing, a.LandingShow)
	app.Get(a.Routes.Dashboard, a.DashboardShow)
	app.Get(a.Routes.ResetPasswordWeb, a.ResetPasswordShow)
	app.Get(a.Routes.AdminLoginWeb, a.AdminLoginShow)
	app.Get(a.Routes.AdminDashboard, a.AdminDashboardShow)

	app.Post(a.Routes.CheckoutInitiate, a.CheckoutInitiatePost)
	app.Post(a.Routes.CheckoutOrder, a.CheckoutOrderPost)
	app.Post(a.Routes.CheckoutVerify, a.CheckoutVerifyPost)

	app.Post(a.Routes.Login, a.LoginPost)
	app.Post(a.Routes.Logout, a.LogoutPost)
	app.Post(a.Routes.ForgotPass, a.ForgotPasswordPost)
	app.Post(a.Routes.SendOTP, a.SendOTPPost)
	app.Post(a.Routes.VerifyOTP, a.VerifyOTPPost)
	app.Post(a.Routes.ResetPassword, a.ResetPasswordPost)

	app.Post(a.Routes.AdminLogin, a.AdminLoginPost)
	app.Post(a.Routes.AdminLogout, a.AdminLogoutPost)
}

func (a *Controller) LandingShow(c *fiber.Ctx) error {
	return c.Render(a.Views.Landing, fiber.Map{
		"amount":   a.Config.OrderAmount,
		"currency": a.Config.OrderCurrency,
		"key_id":   a.Config.RazorpayKeyID,
	})
}

func (a *Controller) DashboardShow(c *fiber.Ctx) error {
	return c.Render(a.Views.Dashboard, fiber.Map{})
}

func (a *Controller) ResetPasswordShow(c *fiber.Ctx) error {
	return c.Render(a.Views.ResetPassword, fiber.Map{
		"token": c.Query("token", ""),
	})
}

func (a *Controller) AdminLoginShow(c *fiber.Ctx) error {
	return c.Render(a.Views.AdminLogin, fiber.Map{
		"from": c.Query("from", ""),
	})
}

func (a *Controller) AdminDashboardShow(c *fiber.Ctx) error {
	return c.Render(a.Views.AdminDashboard, fiber.Map{})
}

// CheckoutPayload carries the purchaser contact triplet.
type CheckoutPayload struct {
	Name  string `form:"name" json:"name"`
	Email string `form:"email" json:"email"`
	Phone string `form:"phone" json:"phone"`
}

// Validate will run validation rules
func (r CheckoutPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Phone, validation.Required, validation.Length(7, 20)),
	)
}

func (a *Controller) CheckoutInitiatePost(c *fiber.Ctx) error {
	payload := new(CheckoutPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.respondError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidation(c, err)
	}

	var res *CheckoutInitiateResponse

	handler := NewCheckoutInitiateHandler(a.Repo)
	err := handler.Execute(c.Context(), CheckoutInitiateMessage{
		Name:  payload.Name,
		Email: payload.Email,
		Phone: payload.Phone,
		OnResponse: func(resp *CheckoutInitiateResponse) {
			res = resp
		},
	})

	if err != nil {
		a.Logger.Error("checkout initiate error: %s", err)
		return a.respondError(c, err)
	}

	if a.Debug {
		fmt.Println(print.MaybePrettyJSON(res))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"userId":  res.Account.ID,
		"created": res.Created,
	})
}

func (a *Controller) CheckoutOrderPost(c *fiber.Ctx) error {
	payload := new(CheckoutPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.respondError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidation(c, err)
	}

	var res *OrderCreateResponse

	handler := NewOrderCreateHandler(a.Repo, a.Gateway, a.Config.OrderAmount, a.Config.OrderCurrency)

	err := handler.Execute(c.Context(), OrderCreateMessage{
		Name:  payload.Name,
		Email: payload.Email,
		Phone: payload.Phone,
		OnResponse: func(resp *OrderCreateResponse) {
			res = resp
		},
	})

	if err != nil {
		a.Logger.Error("order create error: %s", err)
		return a.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":  true,
		"order_id": res.ProviderOrderID,
		"amount":   res.Amount,
		"currency": res.Currency,
		"key_id":   a.Config.RazorpayKeyID,
	})
}

// PaymentVerifyPayload carries the provider callback. The user id travels
// with the callback for parity with the client contract; the order lookup
// resolves the account on its own.
type PaymentVerifyPayload struct {
	UserID    string `form:"userId" json:"userId"`
	OrderID   string `form:"orderId" json:"orderId"`
	PaymentID string `form:"paymentId" json:"paymentId"`
	Signature string `form:"signature" json:"signature"`
}

// Validate will run validation rules
func (r PaymentVerifyPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.OrderID, validation.Required),
		validation.Field(&r.PaymentID, validation.Required),
		validation.Field(&r.Signature, validation.Required, is.Hexadecimal),
	)
}

func (a *Controller) CheckoutVerifyPost(c *fiber.Ctx) error {
	payload := new(PaymentVerifyPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.respondError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidation(c, err)
	}

	var res *PaymentVerifyResponse

	handler := NewPaymentVerifyHandler(a.Repo, a.Mailer, a.Config.RazorpayKeySecret).
		WithLogger(a.Logger)

	err := handler.Execute(c.Context(), PaymentVerifyMessage{
		OrderID:   payload.OrderID,
		PaymentID: payload.PaymentID,
		Signature: payload.Signature,
		OnResponse: func(resp *PaymentVerifyResponse) {
			res = resp
		},
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.TextCode == TextCodeWelcomeEmailNotSent {
			// the purchase is complete; only the credentials mail is missing
			a.Logger.Warn("payment verified but welcome email failed: %s", err)
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"success":    true,
				"email_sent": false,
			})
		}

		a.Logger.Error("payment verify error: %s", err)
		return a.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":    true,
		"email_sent": res.EmailSent,
	})
}

// LoginPayload carries member credentials.
type LoginPayload struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *Controller) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.respondError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidation(c, err)
	}

	token, err := a.Auther.Login(c.Context(), payload.Email, payload.Password)
	if err != nil {
		return a.respondError(c, err)
	}

	a.setAuthCookie(c, a.Config.SessionCookieName, token)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"token":   token,
	})
}

func (a *Controller) LogoutPost(c *fiber.Ctx) error {
	a.clearAuthCookie(c, a.Config.SessionCookieName)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

// EmailPayload carries a lone email field, used by the reset entry points.
type EmailPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r EmailPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *Controller) ForgotPasswordPost(c *fiber.Ctx) error {
	payload := new(EmailPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.respondError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidation(c, err)
	}

	handler := NewInitializePasswordResetHandler(a.Repo, a.Mailer, a.Config.BaseURL)

	err := handler.Execute(c.Context(), InitializePasswordResetMessage{
		Email:      payload.Email,
		OnResponse: func(resp *InitializePasswordResetResponse) {},
	})

	if err != nil {
		a.Logger.Error("forgot password error: %s", err)
		return a.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

func (a *Controller) SendOTPPost(c *fiber.Ctx) error {
	payload := new(EmailPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.respondError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidation(c, err)
	}

	handler := NewOTPSendHandler(a.Repo, a.Mailer)

	err := handler.Execute(c.Context(), OTPSendMessage{
		Email:      payload.Email,
		OnResponse: func(resp *OTPSendResponse) {},
	})

	if err != nil {
		a.Logger.Error("send OTP error: %s", err)
		return a.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

// OTPVerifyPayload carries the email/code pair.
type OTPVerifyPayload struct {
	Email string `form:"email" json:"email"`
	Code  string `form:"otp" json:"otp"`
}

// Validate will run validation rules
func (r OTPVerifyPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Code, validation.Required, validation.Length(6, 6), is.Digit),
	)
}

func (a *Controller) VerifyOTPPost(c *fiber.Ctx) error {
	payload := new(OTPVerifyPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.respondError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidation(c, err)
	}

	var res *OTPVerifyResponse

	handler := NewOTPVerifyHandler(a.Repo)

	err := handler.Execute(c.Context(), OTPVerifyMessage{
		Email: payload.Email,
		Code:  payload.Code,
		OnResponse: func(resp *OTPVerifyResponse) {
			res = resp
		},
	})

	if err != nil {
		return a.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"token":   res.ResetToken,
	})
}

// ResetPasswordPayload finalizes a reset with a live token.
type ResetPasswordPayload struct {
	Token           string `form:"token" json:"token"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will run validation rules
func (r ResetPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *Controller) ResetPasswordPost(c *fiber.Ctx) error {
	payload := new(ResetPasswordPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.respondError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidation(c, err)
	}

	handler := NewFinalizePasswordResetHandler(a.Repo)

	err := handler.Execute(c.Context(), FinalizePasswordResetMessage{
		Token:      payload.Token,
		Password:   payload.Password,
		OnResponse: func(resp *FinalizePasswordResetResponse) {},
	})

	if err != nil {
		return a.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

func (a *Controller) AdminLoginPost(c *fiber.Ctx) error {
	payload := new(LoginPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.respondError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidation(c, err)
	}

	token, err := a.Auther.AdminLogin(c.Context(), payload.Email, payload.Password)
	if err != nil {
		return a.respondError(c, err)
	}

	a.setAuthCookie(c, a.Config.AdminCookieName, token)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"token":   token,
	})
}

func (a *Controller) AdminLogoutPost(c *fiber.Ctx) error {
	a.clearAuthCookie(c, a.Config.AdminCookieName)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

func (a *Controller) setAuthCookie(c *fiber.Ctx, name, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(a.Config.TokenTTL),
		HTTPOnly: true,
		Secure:   a.Config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (a *Controller) clearAuthCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   a.Config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// respondError maps rich errors onto HTTP statuses. Anything 500 and up is
// logged in full and reported with a generic body.
func (a *Controller) respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal server error"
	textCode := ""

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		if richErr.Code != 0 {
			status = richErr.Code
		}
		if status < fiber.StatusInternalServerError {
			message = richErr.Message
			textCode = richErr.TextCode
		}
	}

	if status >= fiber.StatusInternalServerError {
		a.Logger.Error("request failed: %s", err)
	}

	body := fiber.Map{
		"success": false,
		"error":   message,
	}

	if textCode != "" {
		body["code"] = textCode
	}

	return c.Status(status).JSON(body)
}

func (a *Controller) respondValidation(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success":    false,
		"error":      "validation failed",
		"validation": FormatValidationErrorToMap(err),
	})
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return goerrors.New("values must match", goerrors.CategoryValidation)
		}
		return nil
	}
}

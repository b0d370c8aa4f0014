package handler

// Requests only check formats here. Presence rules and their messages belong
// to the account service.

type registerRequest struct {
	Username string `json:"username" validate:"max=64"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type verifyCodeRequest struct {
	Email            string `json:"email"`
	VerificationCode string `json:"verificationcode"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

type editRequest struct {
	ID           string  `json:"id"`
	Username     string  `json:"username" validate:"max=64"`
	Email        string  `json:"email" validate:"omitempty,email"`
	ProfilePhoto *string `json:"profilephoto" validate:"omitempty,max=2048"`
	PhoneToken   *string `json:"phonetoken" validate:"omitempty,max=512"`
	PhoneNumber  *string `json:"phonenumber" validate:"omitempty,max=32"`
}

type deleteRequest struct {
	ID string `json:"id" query:"id"`
}

// resultResponse documents domain.Result for swagger.
type resultResponse struct {
	Status  int    `json:"status" example:"200"`
	Message string `json:"message" example:"User logged in successfully"`
	Token   string `json:"token,omitempty"`
}

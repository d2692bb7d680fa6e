package http

// Register godoc
// @Summary Register a new account
// @Description Create a customer account. The reserved admin email is always refused.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body object{first_name=string,last_name=string,email=string,phone=string,password=string} true "Account data"
// @Success 201 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string}
// @Router /api/auth/register [post]
func (h *UserHandler) RegisterDoc() {}

// Login godoc
// @Summary Log in
// @Description Authenticate and receive a JWT. An anonymous session id in X-Session-ID carries the cart over; a deferred action is replayed.
// @Tags Auth
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Anonymous session id"
// @Param request body object{email=string,password=string} true "Credentials"
// @Success 200 {object} object{success=bool,message=string,data=object{token=string,user=object}}
// @Failure 401 {object} object{success=bool,error=string}
// @Router /api/auth/login [post]
func (h *UserHandler) LoginDoc() {}

// UpdateProfile godoc
// @Summary Update profile
// @Description Update profile fields; omitted fields stay unchanged. Avatar updates are refused when they would exceed the profile storage budget.
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{first_name=string,last_name=string,phone=string,avatar=string} true "Profile fields"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 413 {object} object{success=bool,error=string}
// @Router /api/profile [put]
func (h *UserHandler) UpdateProfileDoc() {}

// ListUsers godoc
// @Summary List accounts
// @Description List all accounts without credentials (Admin only)
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{success=bool,data=array}
// @Failure 403 {object} object{success=bool,error=string}
// @Router /api/users [get]
func (h *UserHandler) ListUsersDoc() {}

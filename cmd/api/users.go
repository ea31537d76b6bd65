package main

import (
	"errors"
	"moviecatalog/proj/internal/services/users"
	"net/http"
	"strings"
)

// userError renders service errors; anything unknown is a server error.
func (app *Application) userError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		app.Http.NotFound(w, r, "User not found")
	case errors.Is(err, users.ErrEmailTaken):
		app.Http.Conflict(w, r, "A user with this email already exists")
	case errors.Is(err, users.ErrInvalidCredentials):
		app.Http.Unauthorized(w, r, "Invalid email or password")
	case errors.Is(err, users.ErrStoreUnavailable):
		app.Http.setupLogPerReq(r).Warn("user store unavailable", "errMsg", err.Error())
		app.Http.ServiceUnavailable(w, r, "User storage is temporarily unavailable")
	default:
		app.Http.ServerError(w, r, err, "")
	}
}

func (app *Application) createUser(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string `json:"name" validate:"required,min=2,max=50"`
		Email    string `json:"email" validate:"required,email,max=254"`
		Password string `json:"password" validate:"required,min=6,max=72"`
		Age      *int   `json:"age" validate:"omitempty,gte=0,lte=120"`
		Role     string `json:"role" validate:"omitempty,oneof=user admin"`
		IsActive *bool  `json:"isActive"`
	}
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if violations := app.validator.Struct(input); !violations.Empty() {
		app.Http.ValidationFailed(w, r, violations)
		return
	}
	user, err := app.users.Create(r.Context(), users.CreateParams{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Age:      input.Age,
		Role:     input.Role,
		IsActive: input.IsActive,
	})
	if err != nil {
		app.userError(w, r, err)
		return
	}
	app.Http.Created(w, r, envelop{"data": user}, "User created")
}

func (app *Application) listUsers(w http.ResponseWriter, r *http.Request) {
	f, search, violations := app.validator.UserList(r.URL.Query())
	if !violations.Empty() {
		app.Http.ValidationFailed(w, r, violations)
		return
	}
	list, pagination, err := app.users.List(r.Context(), search, f)
	if err != nil {
		app.userError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"data": list, "pagination": pagination}, "")
}

func (app *Application) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := app.users.Get(r.Context(), idParam(r))
	if err != nil {
		app.userError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"data": user}, "")
}

func (app *Application) updateUser(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     *string `json:"name" validate:"omitempty,min=2,max=50"`
		Email    *string `json:"email" validate:"omitempty,email,max=254"`
		Age      *int    `json:"age" validate:"omitempty,gte=0,lte=120"`
		Role     *string `json:"role" validate:"omitempty,oneof=user admin"`
		IsActive *bool   `json:"isActive"`
	}
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		input.Name = &name
	}
	if violations := app.validator.Struct(input); !violations.Empty() {
		app.Http.ValidationFailed(w, r, violations)
		return
	}
	user, err := app.users.Update(r.Context(), idParam(r), users.UpdateParams{
		Name:     input.Name,
		Email:    input.Email,
		Age:      input.Age,
		Role:     input.Role,
		IsActive: input.IsActive,
	})
	if err != nil {
		app.userError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"data": user}, "User updated")
}

func (app *Application) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := app.users.Delete(r.Context(), idParam(r)); err != nil {
		app.userError(w, r, err)
		return
	}
	app.Http.Ok(w, r, nil, "User deleted")
}

func (app *Application) login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	input.Email = strings.TrimSpace(input.Email)
	if violations := app.validator.Struct(input); !violations.Empty() {
		app.Http.ValidationFailed(w, r, violations)
		return
	}
	tokens, err := app.users.Login(r.Context(), input.Email, input.Password)
	if err != nil {
		app.userError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"data": tokens}, "")
}

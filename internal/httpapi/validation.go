package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/labstack/echo/v4"
)

const (
	msgName     = "Name is required and must be a string."
	msgEmail    = "Valid email is required."
	msgPassword = "Password must be at least 6 characters long."
	msgTitle    = "Title is required and must be a string."
	msgContent  = "Content is required and must be a string."
	msgPostID   = "Post ID must be a valid integer."

	minPasswordLength = 6
)

// fieldMessages names the message reported when a body field has the wrong
// JSON type.
var fieldMessages = map[string]string{
	"name":     msgName,
	"email":    msgEmail,
	"password": msgPassword,
	"title":    msgTitle,
	"content":  msgContent,
	"postId":   msgPostID,
}

var errPostID = validation.NewError("validation_post_id", msgPostID)

// int64String accepts base 10 strings that fit in an int64.
func int64String(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := strconv.ParseInt(s, 10, 64); err != nil {
		return errPostID
	}
	return nil
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r signupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required.Error(msgName)),
		validation.Field(&r.Email, validation.Required.Error(msgEmail), is.EmailFormat.Error(msgEmail)),
		validation.Field(&r.Password, validation.Required.Error(msgPassword), validation.Length(minPasswordLength, 0).Error(msgPassword)),
	)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required.Error(msgEmail), is.EmailFormat.Error(msgEmail)),
		validation.Field(&r.Password, validation.Required.Error(msgPassword), validation.Length(minPasswordLength, 0).Error(msgPassword)),
	)
}

type createPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (r createPostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required.Error(msgTitle)),
		validation.Field(&r.Content, validation.Required.Error(msgContent)),
	)
}

type addCommentRequest struct {
	PostID  string `json:"postId"`
	Content string `json:"content"`
}

func (r addCommentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PostID, validation.Required.Error(msgPostID), validation.By(int64String)),
		validation.Field(&r.Content, validation.Required.Error(msgContent)),
	)
}

// postID parses the path id. Validate has already rejected values that do
// not fit in an int64.
func (r addCommentRequest) postID() (int64, error) {
	id, err := strconv.ParseInt(r.PostID, 10, 64)
	if err != nil {
		return 0, goerrors.NewValidation("Validation failed", goerrors.FieldError{
			Field:   "postId",
			Message: msgPostID,
			Value:   r.PostID,
		}).WithCode(http.StatusBadRequest).WithTextCode("VALIDATION_ERROR")
	}
	return id, nil
}

// bindBody decodes the request body into dest. A field of the wrong JSON
// type is reported against that field; any other decode failure is a
// malformed body.
func bindBody(c echo.Context, dest any) error {
	err := (&echo.DefaultBinder{}).BindBody(c, dest)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		message, ok := fieldMessages[typeErr.Field]
		if !ok {
			message = "Field has an invalid type."
		}
		return goerrors.NewValidation("Validation failed", goerrors.FieldError{
			Field:   typeErr.Field,
			Message: message,
			Value:   typeErr.Value,
		}).WithCode(http.StatusBadRequest).WithTextCode("VALIDATION_ERROR")
	}

	return goerrors.New("Request body is malformed", goerrors.CategoryValidation).
		WithCode(http.StatusBadRequest).
		WithTextCode("MALFORMED_BODY")
}

// validate trims the request fields and runs their rules, collecting every
// failing field.
func validate(v validation.Validatable) error {
	trimStrings(v)
	err := v.Validate()
	if err == nil {
		return nil
	}
	verr := goerrors.FromOzzoValidation(err, "Validation failed")
	sort.Slice(verr.ValidationErrors, func(i, j int) bool {
		return verr.ValidationErrors[i].Field < verr.ValidationErrors[j].Field
	})
	return verr.WithCode(http.StatusBadRequest).WithTextCode("VALIDATION_ERROR")
}

func trimStrings(dest any) {
	switch r := dest.(type) {
	case *signupRequest:
		r.Name = strings.TrimSpace(r.Name)
		r.Email = strings.TrimSpace(r.Email)
	case *loginRequest:
		r.Email = strings.TrimSpace(r.Email)
	case *createPostRequest:
		r.Title = strings.TrimSpace(r.Title)
		r.Content = strings.TrimSpace(r.Content)
	case *addCommentRequest:
		r.PostID = strings.TrimSpace(r.PostID)
		r.Content = strings.TrimSpace(r.Content)
	}
}

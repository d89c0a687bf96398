package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/invoice-dashboard/internal/model"
	"github.com/iliyamo/invoice-dashboard/internal/utils"
)

// ProviderCredentials is the email/password sign-in provider.
const ProviderCredentials = "credentials"

// Messages shown to the user by Authenticate.
const (
	MsgInvalidCredentials = "Invalid credentials."
	MsgSomethingWentWrong = "Something went wrong."
)

// Credentials is the validated email/password pair.
type Credentials struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
}

// AuthErrorType classifies sign-in failures.
type AuthErrorType int

const (
	// CredentialsSignin means the credentials were refused.
	CredentialsSignin AuthErrorType = iota + 1
	// CallbackRouteError means authorization failed unexpectedly.
	CallbackRouteError
	// UnknownProvider means the sign-in provider is not configured.
	UnknownProvider
)

func (t AuthErrorType) String() string {
	switch t {
	case CredentialsSignin:
		return "CredentialsSignin"
	case CallbackRouteError:
		return "CallbackRouteError"
	case UnknownProvider:
		return "UnknownProvider"
	default:
		return "AuthError"
	}
}

// AuthError is a sign-in failure of a known kind.
type AuthError struct {
	Type AuthErrorType
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Type, e.Err)
	}
	return e.Type.String()
}

func (e *AuthError) Unwrap() error { return e.Err }

// AuthResultKind tells which variant an AuthResult is.
type AuthResultKind int

const (
	AuthOK AuthResultKind = iota + 1
	AuthInvalidCredentials
	AuthUnexpected
)

// Session is an authenticated user plus its signed access token.
type Session struct {
	User  model.User
	Token utils.AccessToken
}

// AuthResult is the outcome of SignIn. Session is set for AuthOK, Err for
// the other kinds.
type AuthResult struct {
	Kind    AuthResultKind
	Session *Session
	Err     *AuthError
}

// TokenIssuer signs an access token for a user.
type TokenIssuer func(userID, email string) (utils.AccessToken, error)

// Authorize returns the user matching creds, or nil when the credentials
// are malformed, the email is unknown or the password does not match.
// An error is only returned when the user lookup fails.
func (s *Service) Authorize(ctx context.Context, creds Credentials) (*model.User, error) {
	if err := validate.Struct(creds); err != nil {
		return nil, nil
	}
	u, err := s.GetUser(ctx, creds.Email)
	if err != nil {
		return nil, err
	}
	if u == nil || !utils.VerifyPassword(u.Password, creds.Password) {
		s.log.Info("invalid credentials")
		return nil, nil
	}
	return u, nil
}

// SignIn runs provider against the submitted form. Failures of a known kind
// come back as AuthResult variants; other errors, such as a token that
// could not be signed, are returned as err.
func (s *Service) SignIn(ctx context.Context, provider string, form map[string]string) (AuthResult, error) {
	if provider != ProviderCredentials {
		return AuthResult{Kind: AuthUnexpected, Err: &AuthError{
			Type: UnknownProvider,
			Err:  fmt.Errorf("provider %q", provider),
		}}, nil
	}
	creds := Credentials{Email: form["email"], Password: form["password"]}
	u, err := s.Authorize(ctx, creds)
	if err != nil {
		return AuthResult{Kind: AuthUnexpected, Err: &AuthError{Type: CallbackRouteError, Err: err}}, nil
	}
	if u == nil {
		return AuthResult{Kind: AuthInvalidCredentials, Err: &AuthError{Type: CredentialsSignin}}, nil
	}
	tok, err := s.issueToken(u.ID, u.Email)
	if err != nil {
		return AuthResult{}, fmt.Errorf("sign access token: %w", err)
	}
	return AuthResult{Kind: AuthOK, Session: &Session{User: *u, Token: tok}}, nil
}

// Authenticate signs in with the credentials provider. On success it
// returns the session and an empty message. Refused sign-ins return a
// user-facing message; errors that are not sign-in failures are returned.
func (s *Service) Authenticate(ctx context.Context, form map[string]string) (*Session, string, error) {
	res, err := s.SignIn(ctx, ProviderCredentials, form)
	if err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) {
			return nil, classify(authErr), nil
		}
		return nil, "", err
	}
	if res.Kind == AuthOK {
		return res.Session, "", nil
	}
	return nil, classify(res.Err), nil
}

func classify(err *AuthError) string {
	if err != nil && err.Type == CredentialsSignin {
		return MsgInvalidCredentials
	}
	return MsgSomethingWentWrong
}

func (s *Service) issueToken(userID, email string) (utils.AccessToken, error) {
	if s.tokens != nil {
		return s.tokens(userID, email)
	}
	return utils.NewAccessToken(s.jwtSecret, userID, email, s.tokenTTL)
}

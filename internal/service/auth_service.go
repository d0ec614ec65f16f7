package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/roomledger/internal/auth"
	"github.com/mmynk/roomledger/internal/ledger"
	"github.com/mmynk/roomledger/internal/middleware"
	"github.com/mmynk/roomledger/internal/models"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	ledger        *LedgerService
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service. Logins are recorded
// on the user of the ledger served by ledgerSvc.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, ledgerSvc *LedgerService, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		ledger:        ledgerSvc,
		logger:        logger,
	}
}

// Login checks the student's password, enrolling it on first use, records the
// student ID on the ledger user and returns a session token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	s.logger.Info("Login request", "student_id", req.Msg.StudentID)

	enrolled, err := s.authenticator.Authenticate(ctx, req.Msg.StudentID, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "student_id", req.Msg.StudentID, "error", err)
		return nil, toConnectError(err)
	}

	var user models.User
	err = s.ledger.mutate(ctx, func(l *ledger.Store) error {
		if err := l.SetStudentID(req.Msg.StudentID); err != nil {
			return err
		}
		user = l.CurrentUser()
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to record login", "student_id", req.Msg.StudentID, "error", err)
		return nil, toConnectError(err)
	}

	token, expiresAt, err := s.jwtManager.Generate(user.ID, user.StudentID)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID, "student_id", user.StudentID, "enrolled", enrolled)
	return connect.NewResponse(&LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
		Enrolled:  enrolled,
	}), nil
}

// Logout revokes the token the request was made with.
func (s *AuthService) Logout(ctx context.Context, req *connect.Request[LogoutRequest]) (*connect.Response[LogoutResponse], error) {
	claims := middleware.GetClaims(ctx)
	if claims == nil {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	s.jwtManager.Revoke(claims)
	s.logger.Info("User logged out", "student_id", claims.StudentID)
	return connect.NewResponse(&LogoutResponse{}), nil
}

// WhoAmI returns the ledger user of the current session.
func (s *AuthService) WhoAmI(ctx context.Context, req *connect.Request[WhoAmIRequest]) (*connect.Response[WhoAmIResponse], error) {
	claims := middleware.GetClaims(ctx)
	if claims == nil {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	var user models.User
	err := s.ledger.view(ctx, func(l *ledger.Store) error {
		user = l.CurrentUser()
		return nil
	})
	if err != nil {
		s.logger.Error("WhoAmI failed", "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("WhoAmI request", "user_id", user.ID)
	return connect.NewResponse(&WhoAmIResponse{User: user}), nil
}

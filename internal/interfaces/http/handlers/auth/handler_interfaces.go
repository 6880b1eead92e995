package auth

import (
	"context"
	"net/http"

	"github.com/orris-inc/warden/internal/application/auth/dto"
	"github.com/orris-inc/warden/internal/application/auth/usecases"
	"github.com/orris-inc/warden/internal/domain/permission"
	"github.com/orris-inc/warden/internal/infrastructure/flash"
	"github.com/orris-inc/warden/internal/shared/authorization"
)

type loginUseCase interface {
	Execute(ctx context.Context, cmd usecases.LoginCommand) (*usecases.LoginResult, error)
}

type logoutUseCase interface {
	Execute(ctx context.Context, p *authorization.Principal) error
}

type changePasswordUseCase interface {
	Execute(ctx context.Context, p *authorization.Principal, req dto.ChangePasswordRequest) error
}

type flashStore interface {
	Add(w http.ResponseWriter, r *http.Request, level, text string) error
	Pop(w http.ResponseWriter, r *http.Request) ([]flash.Message, error)
}

type capabilityLister interface {
	Capabilities(ctx context.Context, p *authorization.Principal) ([]permission.Capability, error)
}

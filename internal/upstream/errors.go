package upstream

import (
	"fmt"

	"github.com/waabox/buildboard/internal/domain"
)

func errUnreachable(cause error) error {
	return fmt.Errorf("%w: %v", domain.ErrUpstreamUnreachable, cause)
}

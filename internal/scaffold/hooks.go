package scaffold

import (
	"context"

	"github.com/tacogips/forge/internal/config"
)

// Dispatch invokes hook name on the template layer and then on the user
// layer. Each invocation is isolated: an error or panic is logged, returned
// as a *config.LayerError, and does not stop the next layer's hook.
func (sc *Scaffolder) Dispatch(ctx context.Context, name config.HookName, s config.Session) []error {
	var errs []error
	for _, layer := range sc.resolver.Layers() {
		hook := layer.Hook(name)
		if hook == nil {
			continue
		}
		sc.logger.Debug().Str("hook", string(name)).Str("layer", string(layer.Kind)).Msg("running hook")
		if err := invokeHook(ctx, hook, s); err != nil {
			lerr := config.NewLayerError(layer.Kind, config.HookPhase(name), err)
			sc.logger.Error().Err(err).
				Str("layer", string(layer.Kind)).
				Str("phase", lerr.Phase).
				Msg("hook failed")
			errs = append(errs, lerr)
		}
	}
	return errs
}

func invokeHook(ctx context.Context, hook config.HookFunc, s config.Session) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = config.PanicError(rec)
		}
	}()
	return hook(ctx, s)
}

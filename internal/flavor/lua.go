package flavor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/airslash/airslash/internal/config"
	"github.com/airslash/airslash/internal/scripting"
)

var errNoGenerator = errors.New("no flavor endpoint and no flavor_text script")

// LuaGenerator produces messages offline with the flavor_text Lua function.
type LuaGenerator struct {
	mu     sync.Mutex
	engine *scripting.Engine
}

func NewLuaGenerator(engine *scripting.Engine) *LuaGenerator {
	return &LuaGenerator{engine: engine}
}

func (g *LuaGenerator) Generate(ctx context.Context, score int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return g.engine.FlavorText(ctx, score)
}

func (g *LuaGenerator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.engine.Close()
	return nil
}

// NewGenerator picks the generator the configuration asks for: the model
// endpoint when one is set and its API key is present, otherwise the Lua
// scripts.
func NewGenerator(cfg config.FlavorConfig, log *zap.Logger) (Generator, error) {
	if cfg.Endpoint != "" {
		key := os.Getenv(cfg.APIKeyEnv)
		if key != "" {
			gen, err := NewHTTPGenerator(context.Background(), cfg, key, nil)
			if err != nil {
				return nil, err
			}
			return gen, nil
		}
		log.Warn("未設定評語 API 金鑰，改用 Lua 腳本", zap.String("env", cfg.APIKeyEnv))
	}
	engine, err := scripting.NewEngine(cfg.ScriptsDir, log)
	if err != nil {
		return nil, fmt.Errorf("flavor scripts: %w", err)
	}
	if !engine.HasFunction("flavor_text") {
		engine.Close()
		return nil, fmt.Errorf("flavor scripts in %s: %w", cfg.ScriptsDir, errNoGenerator)
	}
	return NewLuaGenerator(engine), nil
}

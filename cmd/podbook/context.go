package main

import (
	"os"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"podbook/internal/config"
	"podbook/pkg/logger"
)

type commandContext struct {
	v          *viper.Viper
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(v *viper.Viper, configFlag *string) *commandContext {
	return &commandContext{v: v, configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Bind(c.v, path)
		if err != nil {
			c.configErr = err
			return
		}
		logger.InitWithWriter(os.Stderr, cfg.Observability.Logging.Level, "text")
		c.config = cfg
	})
	return c.config, c.configErr
}

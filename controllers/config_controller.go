package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/postboard/config"
	"github.com/cppla/postboard/utils"
)

// ConfigController serves environment-driven UI configuration.
type ConfigController struct{}

func NewConfigController() *ConfigController { return &ConfigController{} }

// GetLayout returns the header chrome and the UI timings.
func (c *ConfigController) GetLayout(ctx *gin.Context) {
	cfg := config.Get()
	utils.Success(ctx, gin.H{
		"brand":             cfg.BrandName,
		"header_title":      cfg.HeaderTitle,
		"page_size":         cfg.PageSize,
		"navigate_delay_ms": cfg.NavigateDelayMs,
		"toast_ttl_ms":      cfg.ToastTTLMs,
	})
}

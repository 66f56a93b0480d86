package admin

import "github.com/giftify-next/internal/provider"

// Handler 运营后台接口处理器入口，直接复用容器中的服务实例。
// 管理端路由（礼物履约、用户管理、权限、审计）都挂在它上面。
type Handler struct {
	*provider.Container
}

// New 创建运营后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

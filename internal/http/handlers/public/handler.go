package public

import "github.com/giftify-next/internal/provider"

// Handler 粉丝/创作者侧接口处理器入口，直接复用容器中的服务实例。
// 公开路由（注册登录、礼物请求、通知、收藏）都挂在它上面。
type Handler struct {
	*provider.Container
}

// New 创建用户侧处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

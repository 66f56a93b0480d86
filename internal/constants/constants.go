package constants

// 礼物请求状态常量
const (
	GiftRequestStatusPending             = "pending"
	GiftRequestStatusAcceptedNeedAddress = "accepted_need_address"
	GiftRequestStatusReadyForPickup      = "ready_for_pickup"
	GiftRequestStatusPickedUp            = "picked_up"
	GiftRequestStatusDelivered           = "delivered"
	GiftRequestStatusRejected            = "rejected"
)

// 礼物请求时间线事件常量
const (
	TimelineEventCreated        = "created_at"
	TimelineEventAccepted       = "accepted_at"
	TimelineEventRejected       = "rejected_at"
	TimelineEventReadyForPickup = "ready_for_pickup_at"
	TimelineEventPickedUp       = "picked_up_at"
	TimelineEventDelivered      = "delivered_at"
)

// 创作者响应动作常量
const (
	RespondDecisionAccept = "accept"
	RespondDecisionReject = "reject"
)

// 平台角色常量
const (
	RoleFan       = "fan"
	RoleCreator   = "creator"
	RoleLogistics = "logistics"
	RoleAdmin     = "admin"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 登录日志状态常量
const (
	LoginLogStatusSuccess = "success"
	LoginLogStatusFailed  = "failed"
)

// 登录日志来源常量
const (
	LoginLogSourceWeb = "web"
	LoginLogSourceAPI = "api"
)

// 登录日志失败原因常量
const (
	LoginFailReasonBadRequest         = "bad_request"
	LoginFailReasonCaptchaRequired    = "captcha_required"
	LoginFailReasonCaptchaInvalid     = "captcha_invalid"
	LoginFailReasonInvalidCredentials = "invalid_credentials"
	LoginFailReasonUserDisabled       = "user_disabled"
	LoginFailReasonInternalError      = "internal_error"
)

// 验证码提供方常量
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 验证码校验场景常量
const (
	CaptchaSceneLogin    = "login"
	CaptchaSceneRegister = "register"
)

// 通知类型常量
const (
	NotificationTypeGiftReceived  = "gift_received"
	NotificationTypeGiftAccepted  = "gift_accepted"
	NotificationTypeGiftRejected  = "gift_rejected"
	NotificationTypeGiftReady     = "gift_ready"
	NotificationTypeGiftPickedUp  = "gift_picked_up"
	NotificationTypeGiftDelivered = "gift_delivered"
)

// 安全策略拒绝原因常量
const (
	DenyReasonPickupsPaused   = "pickups_paused"
	DenyReasonGiftingDisabled = "creator_gifting_disabled"
	DenyReasonDailyLimit      = "daily_limit_reached"
)

// 物流取件窗口常量
const (
	PickupWindowSameDay = "same_day"
	PickupWindowNextDay = "next_day"
	PickupWindowTwoDays = "two_days"
)

// 物流包装类型常量
const (
	PackingTypeStandard = "standard"
	PackingTypeGift     = "gift"
	PackingTypeDiscreet = "discreet"
)

// 队列常量
const (
	QueueDefault             = "default"
	TaskNotificationDispatch = "notification:dispatch"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "gf"
)

// 设置键常量
const (
	SettingKeySiteConfig       = "site_config"
	SettingKeyGiftingGlobal    = "gifting_global_config"
	SettingKeyCreatorOverrides = "gifting_creator_overrides"
	SettingKeyLogisticsConfig  = "logistics_config"
	SettingKeyCaptchaConfig    = "captcha_config"
	SettingKeyDashboardConfig  = "dashboard_config"
)

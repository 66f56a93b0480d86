package response

const (
	CodeOK              = 0
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeConflict        = 409
	CodeTooManyRequests = 429
	CodeInternal        = 500
)

// 礼物请求域业务码，在通用码后追加两位细分，
// 客户端据此区分角色不符与策略拒绝两类 403。
const (
	CodeValidationFailed  = 40001
	CodeRoleForbidden     = 40301
	CodePolicyDenied      = 40302
	CodeRecordNotFound    = 40401
	CodeInvalidTransition = 40901
)

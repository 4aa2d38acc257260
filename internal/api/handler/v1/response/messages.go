package response

// User-facing flash messages.
const (
	MsgRegistered         = "注册成功！请登录"
	MsgDuplicateUsername  = "用户名已存在"
	MsgInvalidCredentials = "用户名或密码错误"
	MsgLoggedIn           = "登录成功"
	MsgLoggedOut          = "已退出登录"
	MsgLoginRequired      = "请先登录"
	MsgTooManyAttempts    = "请求过于频繁，请稍后再试"

	MsgTrinityCreated  = "不可能三角创建成功！"
	MsgTrinityUpdated  = "不可能三角更新成功！"
	MsgTrinityDeleted  = "不可能三角已删除"
	MsgTrinityNotFound = "不可能三角不存在"
	MsgNoEditRight     = "您没有权限编辑此内容"
	MsgNoDeleteRight   = "您没有权限删除此内容"

	MsgCommentAdded   = "评论添加成功！"
	MsgCommentDeleted = "评论已删除"
	MsgEmptyComment   = "评论内容不能为空"

	MsgAdminRequired  = "需要管理员权限"
	MsgNoFileSelected = "没有选择文件"
	MsgNotCSV         = "请上传CSV文件"
	MsgImportFailed   = "导入失败，请检查文件格式"
	MsgImportDone     = "成功导入 %d 条记录，跳过 %d 条"
)

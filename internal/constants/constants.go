package constants

// 账号状态常量
const (
	AccountStatusActive   = "active"
	AccountStatusDisabled = "disabled"
)

// 邮件通道常量
const (
	EmailProviderSMTP   = "smtp"
	EmailProviderResend = "resend"
	EmailProviderLog    = "log"
)

// 人机验证常量
const (
	CaptchaProviderNone      = "none"
	CaptchaProviderImage     = "image"
	CaptchaProviderTurnstile = "turnstile"

	CaptchaSceneForgotPassword = "forgot_password"
)

// 异步任务常量
const (
	QueueDefault           = "default"
	QueueCritical          = "critical"
	TaskPasswordResetEmail = "password_reset:send_code"
)

// 找回密码默认参数
const (
	ResetCodeLength             = 6
	ResetCodeExpireMinutes      = 5
	ResetSessionExpireMinutes   = 15
	ResetMaxAttempts            = 5
	ResetLockMinutes            = 15
	ResetPurgeRetentionHours    = 24
	ResetCodeSaltBytes          = 16
	ResetCodeHashBytes          = 64
	ResetMailSubject            = "Cortexa Affect password reset code"
	ResetMailDefaultFromAddress = "security@cortexa.app"
)

// 密码策略基线，配置只能在此基础上收紧
const PasswordMinLength = 8

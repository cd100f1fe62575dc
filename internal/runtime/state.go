package runtime

// ConfigPath stores the path to the configuration file provided via CLI flags.
// ConfigPath 存储通过 CLI 标志提供的配置文件路径。
var ConfigPath string

// NoColor disables styled text output, set by --no-color or NO_COLOR.
// NoColor 禁用带样式的文本输出，由 --no-color 或 NO_COLOR 设置。
var NoColor bool

package constants

// AdapterVariant 调试适配器的类型，不同的适配器有各自需要兼容的行为
type AdapterVariant string

const (
	AdapterGeneric AdapterVariant = "generic"
	AdapterHHVM    AdapterVariant = "hhvm"
	AdapterPython  AdapterVariant = "python"
	AdapterNode    AdapterVariant = "node"
	AdapterDelve   AdapterVariant = "delve"
)

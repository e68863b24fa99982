package protocol

// Location 位置，行号和列号都从0开始
type Location struct {
	ScriptID     string `json:"scriptId"`
	LineNumber   int    `json:"lineNumber"`
	ColumnNumber int    `json:"columnNumber"`
}

// CallFrame 栈帧
type CallFrame struct {
	CallFrameID  string       `json:"callFrameId"`
	FunctionName string       `json:"functionName"`
	Location     Location     `json:"location"`
	URL          string       `json:"url"`
	ScopeChain   []Scope      `json:"scopeChain"`
	This         RemoteObject `json:"this"`
	HasSource    bool         `json:"hasSource"`
}

// Scope 作用域
type Scope struct {
	Type   string       `json:"type"`
	Name   string       `json:"name,omitempty"`
	Object RemoteObject `json:"object"`
}

// RemoteObject 变量的值，ObjectID 不为空的时候可以通过 getProperties 展开
type RemoteObject struct {
	Type        string      `json:"type"`
	Subtype     string      `json:"subtype,omitempty"`
	ClassName   string      `json:"className,omitempty"`
	Value       interface{} `json:"value,omitempty"`
	Description string      `json:"description,omitempty"`
	ObjectID    string      `json:"objectId,omitempty"`
}

// PropertyDescriptor 对象的一个属性
type PropertyDescriptor struct {
	Name         string       `json:"name"`
	Value        RemoteObject `json:"value"`
	Writable     bool         `json:"writable"`
	Configurable bool         `json:"configurable"`
	Enumerable   bool         `json:"enumerable"`
}

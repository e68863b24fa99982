package translator

import (
	"context"
	"errors"
	"strconv"

	e "github.com/fansqz/go-debug-translator/error"
	"github.com/fansqz/go-debug-translator/protocol"
	"github.com/google/go-dap"
	"github.com/sirupsen/logrus"
)

const (
	evaluateContextWatch = "watch"
	evaluateContextRepl  = "repl"
)

// evaluate 计算表达式，frameID 为0时在全局作用域计算
// 不读写 translator 的状态，可以在其他协程中执行
func (t *Translator) evaluate(ctx context.Context, expression string, frameID int) (*protocol.EvaluateResult, error) {
	args := dap.EvaluateArguments{Expression: expression, Context: evaluateContextRepl}
	if frameID != 0 {
		args.FrameId = frameID
		args.Context = evaluateContextWatch
	}
	body, err := t.session.Evaluate(ctx, args)
	if err != nil {
		var adapterErr *e.AdapterError
		if errors.As(err, &adapterErr) {
			// 适配器拒绝计算，当作表达式抛出了异常
			return &protocol.EvaluateResult{
				Result: protocol.RemoteObject{
					Type:        "object",
					Subtype:     "error",
					ClassName:   "Error",
					Description: adapterErr.Message,
				},
				WasThrown: true,
			}, nil
		}
		logrus.Errorf("[Translator] evaluate fail, expression = %s, err = %v", expression, err)
		return nil, err
	}
	return &protocol.EvaluateResult{
		Result: remoteObject(body.Result, body.Type, body.VariablesReference),
	}, nil
}

// getProperties 展开对象，子属性都是只读的
func (t *Translator) getProperties(ctx context.Context, objectID string) (*protocol.GetPropertiesResult, error) {
	reference, err := decodeHandle(objectID, variablesHandle)
	if err != nil {
		return nil, err
	}
	variables, err := t.session.Variables(ctx, reference)
	if err != nil {
		logrus.Errorf("[Translator] variables fail, reference = %d, err = %v", reference, err)
		return nil, err
	}
	answer := &protocol.GetPropertiesResult{Result: make([]protocol.PropertyDescriptor, 0, len(variables))}
	for _, variable := range variables {
		answer.Result = append(answer.Result, protocol.PropertyDescriptor{
			Name:         variable.Name,
			Value:        remoteObject(variable.Value, variable.Type, variable.VariablesReference),
			Writable:     false,
			Configurable: false,
			Enumerable:   true,
		})
	}
	return answer, nil
}

// remoteObject 结构化的值生成 objectId，其他的值直接返回
func remoteObject(value string, typ string, reference int) protocol.RemoteObject {
	if reference > 0 {
		return protocol.RemoteObject{
			Type:        "object",
			ClassName:   typ,
			Description: value,
			ObjectID:    encodeHandle(variablesHandle, reference),
		}
	}
	return protocol.RemoteObject{
		Type:        primitiveType(value),
		Value:       value,
		Description: value,
	}
}

func primitiveType(value string) string {
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return "number"
	}
	if value == "true" || value == "false" {
		return "boolean"
	}
	return "string"
}

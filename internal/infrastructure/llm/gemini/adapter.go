package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"study-agent/internal/application/port/output"
	"study-agent/internal/domain/entity"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var _ output.LLMPort = (*Adapter)(nil)

// Adapter backs LLMPort with the Gemini API. Tool definitions are converted
// to genai function declarations; tool results travel back as
// FunctionResponse parts.
type Adapter struct {
	client *genai.Client
	model  string
	logger output.LoggerPort
}

type Config struct {
	APIKey string
	Model  string
	Logger output.LoggerPort
}

func New(ctx context.Context, cfg Config) (*Adapter, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Adapter{client: client, model: cfg.Model, logger: cfg.Logger}, nil
}

func (a *Adapter) Close() error {
	return a.client.Close()
}

func (a *Adapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	model := a.client.GenerativeModel(a.model)
	temp := req.Temperature
	model.GenerationConfig = genai.GenerationConfig{Temperature: &temp}

	if system := collectSystem(req.Messages); system != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
	}

	if len(req.Tools) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: convertTools(req.Tools)}}
	}

	history, last, err := convertHistory(req.Messages)
	if err != nil {
		return nil, err
	}
	if len(last) == 0 {
		return nil, fmt.Errorf("no user message to send")
	}

	session := model.StartChat()
	session.History = history

	if a.logger != nil {
		a.logger.Debug("chat completion", "provider", "gemini", "history", len(history))
	}

	resp, err := session.SendMessage(ctx, last...)
	if err != nil {
		return nil, &entity.TransportError{Op: "chat", Err: err}
	}

	return &output.ChatResponse{Message: convertResponse(resp)}, nil
}

// collectSystem склеивает system-сообщения: у Gemini они живут отдельно от
// истории диалога.
func collectSystem(messages []entity.Message) string {
	var out string
	for _, msg := range messages {
		if msg.Role == entity.RoleSystem {
			if out != "" {
				out += "\n\n"
			}
			out += msg.Content
		}
	}
	return out
}

// convertHistory разбивает сообщения на историю и последний ход, который
// уйдёт через SendMessage.
func convertHistory(messages []entity.Message) ([]*genai.Content, []genai.Part, error) {
	var contents []*genai.Content
	for _, msg := range messages {
		if msg.Role == entity.RoleSystem {
			continue
		}
		content, err := convertMessage(msg)
		if err != nil {
			return nil, nil, err
		}
		contents = append(contents, content)
	}
	if len(contents) == 0 {
		return nil, nil, nil
	}
	last := contents[len(contents)-1]
	return contents[:len(contents)-1], last.Parts, nil
}

func convertMessage(msg entity.Message) (*genai.Content, error) {
	switch msg.Role {
	case entity.RoleAssistant:
		content := &genai.Content{Role: "model"}
		if msg.Content != "" {
			content.Parts = append(content.Parts, genai.Text(msg.Content))
		}
		for _, tc := range msg.ToolCalls {
			args := map[string]any{}
			if tc.Arguments != "" {
				if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
					return nil, fmt.Errorf("bad tool arguments for %s: %w", tc.Name, err)
				}
			}
			content.Parts = append(content.Parts, genai.FunctionCall{Name: tc.Name, Args: args})
		}
		return content, nil
	case entity.RoleTool:
		return &genai.Content{
			Role: "function",
			Parts: []genai.Part{genai.FunctionResponse{
				Name:     msg.Name,
				Response: map[string]any{"result": msg.Content},
			}},
		}, nil
	default:
		return &genai.Content{
			Role:  "user",
			Parts: []genai.Part{genai.Text(msg.Content)},
		}, nil
	}
}

func convertResponse(resp *genai.GenerateContentResponse) entity.Message {
	message := entity.Message{Role: entity.RoleAssistant}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return message
	}

	callSeq := 0
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			message.Content += string(p)
		case genai.FunctionCall:
			args, err := json.Marshal(p.Args)
			if err != nil {
				args = []byte("{}")
			}
			// Gemini не присылает идентификаторы вызовов — генерируем свои
			message.ToolCalls = append(message.ToolCalls, entity.ToolCall{
				ID:        fmt.Sprintf("call_%d", callSeq),
				Name:      p.Name,
				Arguments: string(args),
			})
			callSeq++
		}
	}
	return message
}

func convertTools(tools []entity.ToolDefinition) []*genai.FunctionDeclaration {
	result := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		result = append(result, &genai.FunctionDeclaration{
			Name:        string(t.Name),
			Description: t.Description,
			Parameters:  convertSchema(t.Parameters),
		})
	}
	return result
}

// convertSchema переводит JSON Schema (как map) в genai.Schema. Покрывает
// подмножество, которым описаны наши инструменты: объекты, строки с enum,
// числа и массивы.
func convertSchema(schema map[string]interface{}) *genai.Schema {
	if schema == nil {
		return nil
	}

	out := &genai.Schema{Type: convertSchemaType(stringField(schema, "type"))}
	out.Description = stringField(schema, "description")

	if props, ok := schema["properties"].(map[string]interface{}); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if sub, ok := raw.(map[string]interface{}); ok {
				out.Properties[name] = convertSchema(sub)
			}
		}
	}

	if items, ok := schema["items"].(map[string]interface{}); ok {
		out.Items = convertSchema(items)
	}

	out.Required = stringSlice(schema["required"])
	out.Enum = stringSlice(schema["enum"])

	return out
}

func convertSchemaType(t string) genai.Type {
	switch t {
	case "object":
		return genai.TypeObject
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	default:
		return genai.TypeUnspecified
	}
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func stringSlice(raw interface{}) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Package validation はリクエストボディのデコード、正規化、検証を行う。
// 検証に失敗した場合はVALIDATION_ERRORの*model.APIErrorを返す。
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hitoshi/taskman/internal/model"
)

// MaxBodyBytes はリクエストボディの上限サイズ（1MiB）。
const MaxBodyBytes = 1 << 20

const (
	titleRule       = "min=1,max=200"
	descriptionRule = "max=2000"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72,maxbytes=72"`
	Role     string `json:"role" validate:"omitempty,oneof=USER ADMIN"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type createTaskRequest struct {
	Title       *string `json:"title" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// updateTaskRequest は部分更新のボディ。
// completedはnullと未指定を区別するためRawMessageで受ける。
type updateTaskRequest struct {
	Title       model.NullableString `json:"title"`
	Description model.NullableString `json:"description"`
	Completed   json.RawMessage      `json:"completed"`
}

// Validator はリクエストの検証器。構築後は並行利用できる。
type Validator struct {
	validate *validator.Validate
}

// New はValidatorを生成する。違反のパスにはJSONのフィールド名を使う。
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// maxbytes は文字数ではなくUTF-8のバイト数で上限を判定する
	if err := v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= n
	}); err != nil {
		panic(fmt.Sprintf("register maxbytes validation: %v", err))
	}
	return &Validator{validate: v}
}

// DecodeRegistration はユーザー登録のボディを検証し、正規化済みの入力を返す。
func (v *Validator) DecodeRegistration(w http.ResponseWriter, r *http.Request) (model.Registration, error) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return model.Registration{}, err
	}
	req.Email = normalizeEmail(req.Email)

	if err := v.check(&req); err != nil {
		return model.Registration{}, err
	}
	return model.Registration{
		Email:    req.Email,
		Password: req.Password,
		Role:     model.Role(req.Role),
	}, nil
}

// DecodeCredentials はログインのボディを検証し、正規化済みの入力を返す。
func (v *Validator) DecodeCredentials(w http.ResponseWriter, r *http.Request) (model.Credentials, error) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return model.Credentials{}, err
	}
	req.Email = normalizeEmail(req.Email)

	if err := v.check(&req); err != nil {
		return model.Credentials{}, err
	}
	return model.Credentials{Email: req.Email, Password: req.Password}, nil
}

// DecodeNewTask はタスク作成のボディを検証する。
// タイトルと説明は前後の空白を除去してから長さを判定する。
func (v *Validator) DecodeNewTask(w http.ResponseWriter, r *http.Request) (model.NewTask, error) {
	var req createTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return model.NewTask{}, err
	}
	req.Title = trimPtr(req.Title)
	req.Description = trimPtr(req.Description)

	if err := v.check(&req); err != nil {
		return model.NewTask{}, err
	}
	return model.NewTask{Title: *req.Title, Description: req.Description}, nil
}

// DecodeTaskPatch はタスク部分更新のボディを検証する。
// 空のオブジェクトは変更なしのパッチとして受け付ける。
func (v *Validator) DecodeTaskPatch(w http.ResponseWriter, r *http.Request) (model.TaskPatch, error) {
	var req updateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return model.TaskPatch{}, err
	}

	var (
		patch      model.TaskPatch
		violations []model.Violation
	)

	if req.Title.Set {
		if req.Title.Null {
			violations = append(violations, typeViolation("title", "string", "null"))
		} else {
			title := strings.TrimSpace(req.Title.Value)
			violations = append(violations, v.checkVar("title", title, titleRule)...)
			patch.Title = &title
		}
	}

	if req.Description.Set {
		patch.Description = req.Description
		if !req.Description.Null {
			desc := strings.TrimSpace(req.Description.Value)
			violations = append(violations, v.checkVar("description", desc, descriptionRule)...)
			patch.Description.Value = desc
		}
	}

	if req.Completed != nil {
		completed, ok := parseBool(req.Completed)
		if !ok {
			violations = append(violations, typeViolation("completed", "boolean", jsonKind(req.Completed)))
		} else {
			patch.Completed = &completed
		}
	}

	if len(violations) > 0 {
		return model.TaskPatch{}, model.NewValidationError(violations)
	}
	return patch, nil
}

// check は構造体タグに従って検証し、違反をフィールドの宣言順で返す。
func (v *Validator) check(req any) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate request: %w", err)
	}
	violations := make([]model.Violation, 0, len(verrs))
	for _, fe := range verrs {
		violations = append(violations, toViolation(fe.Field(), fe))
	}
	return model.NewValidationError(violations)
}

// checkVar は単一の値をルールで検証し、違反をpathに紐付けて返す。
func (v *Validator) checkVar(path string, value any, rule string) []model.Violation {
	err := v.validate.Var(value, rule)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []model.Violation{{Path: path, Message: "Invalid value", Code: model.ViolationInvalid}}
	}
	violations := make([]model.Violation, 0, len(verrs))
	for _, fe := range verrs {
		violations = append(violations, toViolation(path, fe))
	}
	return violations
}

// decodeJSON はボディを1つのJSON値としてdstにデコードする。
// 失敗時は単一の違反を持つVALIDATION_ERRORを返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return model.NewValidationError([]model.Violation{emptyBodyViolation()})
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return model.NewValidationError([]model.Violation{decodeViolation(err)})
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return model.NewValidationError([]model.Violation{decodeViolation(err)})
		}
		return model.NewValidationError([]model.Violation{{
			Message: "Request body must contain a single JSON value",
			Code:    model.ViolationInvalidJSON,
		}})
	}
	return nil
}

func decodeViolation(err error) model.Violation {
	var (
		maxErr  *http.MaxBytesError
		typeErr *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &maxErr):
		return model.Violation{
			Message: fmt.Sprintf("Request body must be at most %d bytes", maxErr.Limit),
			Code:    model.ViolationTooBig,
		}
	case errors.As(err, &typeErr):
		return typeViolation(typeErr.Field, expectedKind(typeErr.Type), typeErr.Value)
	case errors.Is(err, io.EOF):
		return emptyBodyViolation()
	default:
		return model.Violation{
			Message: "Malformed JSON body",
			Code:    model.ViolationInvalidJSON,
		}
	}
}

func emptyBodyViolation() model.Violation {
	return model.Violation{
		Message: "Request body is required",
		Code:    model.ViolationInvalidJSON,
	}
}

func typeViolation(path, expected, received string) model.Violation {
	return model.Violation{
		Path:    path,
		Message: fmt.Sprintf("Expected %s, received %s", expected, received),
		Code:    model.ViolationInvalidType,
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func parseBool(raw json.RawMessage) (bool, bool) {
	if jsonKind(raw) != "boolean" {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, false
	}
	return b, true
}

// jsonKind は生のJSON値の種別名を返す。
func jsonKind(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "undefined"
	}
	switch trimmed[0] {
	case 'n':
		return "null"
	case 't', 'f':
		return "boolean"
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "array"
	default:
		return "number"
	}
}

func expectedKind(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Struct, reflect.Map:
		return "object"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	default:
		return t.Kind().String()
	}
}

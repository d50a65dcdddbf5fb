// Package response contém os tipos e funções auxiliares para padronizar
// as respostas JSON dos handlers HTTP: sucesso, erro e mensagens de
// validação sempre no mesmo formato.
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"
)

// Response descreve a estrutura padrão de resposta JSON do servidor.
// Status é "OK" ou "Error"; Error carrega o texto do erro quando houver;
// Data carrega o payload de sucesso quando houver.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse é a estrutura de erro usada na documentação Swagger,
// referenciada nas anotações @Failure dos handlers.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK é o status de resposta bem-sucedida.
	StatusOK = "OK"
	// StatusError é o status de resposta com erro.
	StatusError = "Error"
)

// StatusOKWithData retorna um Response de sucesso com os dados informados.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error retorna um Response de erro com a mensagem informada.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError monta um Response de erro a partir das violações de
// validação, com um texto legível por violação, separado por vírgula.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "alphanum":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only numbers and letters", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of: %s", err.Field(), err.Param()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must have at least %s characters", err.Field(), err.Param()))
		case "gt":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be greater than %s", err.Field(), err.Param()))
		case "gte":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be %s or greater", err.Field(), err.Param()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}

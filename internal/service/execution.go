package service

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/antonio-alexander/go-blog-crud/internal"
	"github.com/antonio-alexander/go-blog-crud/internal/data"

	"github.com/pkg/errors"
)

func getCorrelationId(request *http.Request) string {
	if correlationId := request.Header.Get(data.HeaderCorrelationId); correlationId != "" {
		return correlationId
	}
	return internal.GenerateId()
}

func idFromPath(pathVariables map[string]string) (int64, error) {
	id, err := strconv.ParseInt(pathVariables[data.PathID], 10, 64)
	if err != nil {
		return 0, errors.Wrapf(data.ErrValidationFailed,
			"invalid id %q", pathVariables[data.PathID])
	}
	return id, nil
}

func employeeFromBody(request *http.Request) (data.Employee, error) {
	var employee data.Employee

	bytes, err := io.ReadAll(request.Body)
	defer request.Body.Close()
	if err != nil {
		return data.Employee{}, errors.Wrap(data.ErrValidationFailed, err.Error())
	}
	if err := json.Unmarshal(bytes, &employee); err != nil {
		return data.Employee{}, errors.Wrap(data.ErrValidationFailed, err.Error())
	}
	return employee, nil
}

// handleResponse writes err as a json error with the status it maps to,
// otherwise item as json; without an item it writes 204
func handleResponse(writer http.ResponseWriter, err error, items ...any) {
	var bytes []byte

	if err == nil {
		switch {
		default:
			bytes, err = json.Marshal(items[0])
		case len(items) <= 0:
			writer.WriteHeader(http.StatusNoContent)
			return
		}
	}
	if err != nil {
		writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		writer.WriteHeader(data.ErrorToStatusCode(err))
		bytes, err = json.Marshal(&data.ErrorResponse{Error: err.Error()})
		if err != nil {
			fmt.Printf("error handling response: %s\n", err)
			return
		}
		if _, err := writer.Write(bytes); err != nil {
			fmt.Printf("error handling response: %s\n", err)
		}
		return
	}
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	if _, err := writer.Write(bytes); err != nil {
		fmt.Printf("error handling response: %s\n", err)
	}
}

func handleMessage(writer http.ResponseWriter, message string) {
	writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	writer.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(writer, message); err != nil {
		fmt.Printf("error handling response: %s\n", err)
	}
}

package option

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/prasenjit/swagger-hub/internal/config"
	"github.com/prasenjit/swagger-hub/internal/models"
)

// DocumentOptions resolves one document option per child of documents, in
// enumeration order. The first failing child aborts the whole list.
func DocumentOptions(documents config.Section) ([]models.SwaggerDocumentOption, error) {
	children := documents.Children()
	options := make([]models.SwaggerDocumentOption, 0, len(children))

	for _, child := range children {
		opt, err := documentOption(child)
		if err != nil {
			return nil, err
		}
		options = append(options, opt)
	}

	return options, nil
}

func documentOption(s config.Section) (models.SwaggerDocumentOption, error) {
	baseAddress, err := config.RequiredAbsoluteURI(s, "BaseAddressUrl")
	if err != nil {
		return models.SwaggerDocumentOption{}, err
	}

	parameters, err := parameterOptions(s.Sub("Parameters"))
	if err != nil {
		return models.SwaggerDocumentOption{}, err
	}

	// DocumentUrl is taken verbatim: it may be a relative path, a key or empty.
	documentURL, _ := s.Get("DocumentUrl")
	urlSuffix, _ := s.Get("UrlSuffix")

	return models.SwaggerDocumentOption{
		BaseAddress:  baseAddress,
		DocumentURL:  documentURL,
		URLSuffix:    urlSuffix,
		IsDirectCall: config.BoolOrDefault(s, "IsDirectCall"),
		Parameters:   parameters,
	}, nil
}

func parameterOptions(s config.Section) ([]*openapi3.Parameter, error) {
	children := s.Children()
	parameters := make([]*openapi3.Parameter, 0, len(children))

	for _, child := range children {
		p, err := config.BindOrError[*openapi3.Parameter](child, ParameterBinder{})
		if err != nil {
			return nil, err
		}
		parameters = append(parameters, p)
	}

	return parameters, nil
}

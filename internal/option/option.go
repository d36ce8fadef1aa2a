// Package option resolves the document hub configuration from a config.Section.
//
// The expected layout, relative to the hub section (default "Swagger"):
//
//	Swagger:
//	  Title: Platform API
//	  Version: 1.0.0
//	  Documents:
//	    - BaseAddressUrl: https://orders.internal/
//	      DocumentUrl: swagger/v1/swagger.json
//	      UrlSuffix: orders
//	      IsDirectCall: true
//	      Parameters:
//	        - Name: X-Api-Key
//	          In: header
//
// Resolution is all-or-nothing: the first invalid value aborts it.
package option

import (
	"github.com/prasenjit/swagger-hub/internal/config"
	"github.com/prasenjit/swagger-hub/internal/models"
)

// DefaultSectionName is the hub section used when none is given.
const DefaultSectionName = "Swagger"

const (
	defaultTitle   = "API Hub"
	defaultVersion = "1.0.0"
)

// SwaggerOption resolves the base option of the aggregate document.
func SwaggerOption(root config.Section, sectionName string) (models.SwaggerOption, error) {
	s := root.Sub(sectionOrDefault(sectionName))

	terms, err := config.OptionalURI(s, "TermsOfService")
	if err != nil {
		return models.SwaggerOption{}, err
	}

	contact, err := contactOption(s.Sub("Contact"))
	if err != nil {
		return models.SwaggerOption{}, err
	}

	license, err := licenseOption(s.Sub("License"))
	if err != nil {
		return models.SwaggerOption{}, err
	}

	return models.SwaggerOption{
		Title:          config.StringOrDefault(s, "Title", defaultTitle),
		Version:        config.StringOrDefault(s, "Version", defaultVersion),
		Description:    config.StringOrDefault(s, "Description", ""),
		TermsOfService: terms,
		Contact:        contact,
		License:        license,
	}, nil
}

func contactOption(s config.Section) (*models.SwaggerContactOption, error) {
	if !s.Exists() {
		return nil, nil
	}

	u, err := config.OptionalURI(s, "Url")
	if err != nil {
		return nil, err
	}

	name, _ := s.Get("Name")
	email, _ := s.Get("Email")
	return &models.SwaggerContactOption{Name: name, Email: email, URL: u}, nil
}

func licenseOption(s config.Section) (*models.SwaggerLicenseOption, error) {
	if !s.Exists() {
		return nil, nil
	}

	u, err := config.OptionalURI(s, "Url")
	if err != nil {
		return nil, err
	}

	name, _ := s.Get("Name")
	return &models.SwaggerLicenseOption{Name: name, URL: u}, nil
}

func sectionOrDefault(name string) string {
	if name == "" {
		return DefaultSectionName
	}
	return name
}

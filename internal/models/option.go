package models

import (
	"net/url"

	"github.com/getkin/kin-openapi/openapi3"
)

// SwaggerOption describes the aggregate document published by the hub
type SwaggerOption struct {
	Title          string
	Version        string
	Description    string
	TermsOfService *url.URL
	Contact        *SwaggerContactOption
	License        *SwaggerLicenseOption
}

// SwaggerContactOption holds the contact block of the aggregate document
type SwaggerContactOption struct {
	Name  string
	Email string
	URL   *url.URL
}

// SwaggerLicenseOption holds the license block of the aggregate document
type SwaggerLicenseOption struct {
	Name string
	URL  *url.URL
}

// SwaggerDocumentOption describes one remote OpenAPI document
type SwaggerDocumentOption struct {
	BaseAddress  *url.URL
	DocumentURL  string // Resolved against BaseAddress; may be empty
	URLSuffix    string // Route suffix for the document's operations
	IsDirectCall bool   // Operations are called on BaseAddress instead of through the hub
	Parameters   []*openapi3.Parameter
}

// SwaggerHubOption is the resolved configuration of the whole hub
type SwaggerHubOption struct {
	Option    SwaggerOption
	Documents []SwaggerDocumentOption
}

// Info converts the option into an OpenAPI info object
func (o SwaggerOption) Info() *openapi3.Info {
	info := &openapi3.Info{
		Title:       o.Title,
		Version:     o.Version,
		Description: o.Description,
	}
	if o.TermsOfService != nil {
		info.TermsOfService = o.TermsOfService.String()
	}
	if o.Contact != nil {
		info.Contact = &openapi3.Contact{
			Name:  o.Contact.Name,
			Email: o.Contact.Email,
		}
		if o.Contact.URL != nil {
			info.Contact.URL = o.Contact.URL.String()
		}
	}
	if o.License != nil {
		info.License = &openapi3.License{Name: o.License.Name}
		if o.License.URL != nil {
			info.License.URL = o.License.URL.String()
		}
	}
	return info
}

// DocumentLocation returns the absolute URL of the remote document
func (d SwaggerDocumentOption) DocumentLocation() *url.URL {
	if d.DocumentURL == "" {
		return d.BaseAddress
	}
	ref, err := url.Parse(d.DocumentURL)
	if err != nil {
		return d.BaseAddress.JoinPath(d.DocumentURL)
	}
	return d.BaseAddress.ResolveReference(ref)
}

// ServerURL returns the address the document's operations are served from
func (d SwaggerDocumentOption) ServerURL() string {
	if d.URLSuffix == "" {
		return d.BaseAddress.String()
	}
	return d.BaseAddress.JoinPath(d.URLSuffix).String()
}

package option

import (
	"github.com/prasenjit/swagger-hub/internal/config"
	"github.com/prasenjit/swagger-hub/internal/models"
)

// HubOption resolves the whole hub option from sectionName under root.
// An empty sectionName means DefaultSectionName.
func HubOption(root config.Section, sectionName string) (models.SwaggerHubOption, error) {
	sectionName = sectionOrDefault(sectionName)

	base, err := SwaggerOption(root, sectionName)
	if err != nil {
		return models.SwaggerHubOption{}, err
	}

	documents, err := DocumentOptions(root.Sub(sectionName).Sub("Documents"))
	if err != nil {
		return models.SwaggerHubOption{}, err
	}

	return models.SwaggerHubOption{
		Option:    base,
		Documents: documents,
	}, nil
}

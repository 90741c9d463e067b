package app

import (
	"fmt"

	identityHTTP "github.com/biodidseq/bioseq/internal/identity/http"
	identityRepository "github.com/biodidseq/bioseq/internal/identity/repository"
	identityUseCase "github.com/biodidseq/bioseq/internal/identity/usecase"
)

// PointerRepository returns the document pointer repository based on database driver.
func (c *Container) PointerRepository() (identityUseCase.PointerRepository, error) {
	var err error
	c.pointerRepoInit.Do(func() {
		c.pointerRepository, err = c.initPointerRepository()
		if err != nil {
			c.initErrors["pointerRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["pointerRepository"]; exists {
		return nil, storedErr
	}
	return c.pointerRepository, nil
}

// DocumentUseCase returns the document use case instance.
func (c *Container) DocumentUseCase() (identityUseCase.DocumentUseCase, error) {
	var err error
	c.documentUseCaseInit.Do(func() {
		c.documentUseCase, err = c.initDocumentUseCase()
		if err != nil {
			c.initErrors["documentUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["documentUseCase"]; exists {
		return nil, storedErr
	}
	return c.documentUseCase, nil
}

// DocumentHandler returns the HTTP handler for identity document operations.
func (c *Container) DocumentHandler() (*identityHTTP.DocumentHandler, error) {
	var err error
	c.documentHandlerInit.Do(func() {
		c.documentHandler, err = c.initDocumentHandler()
		if err != nil {
			c.initErrors["documentHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["documentHandler"]; exists {
		return nil, storedErr
	}
	return c.documentHandler, nil
}

// initPointerRepository creates the pointer repository based on the database driver.
func (c *Container) initPointerRepository() (identityUseCase.PointerRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for pointer repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return identityRepository.NewPostgreSQLPointerRepository(db), nil
	case "mysql":
		return identityRepository.NewMySQLPointerRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initDocumentUseCase creates the document use case with all its dependencies.
func (c *Container) initDocumentUseCase() (identityUseCase.DocumentUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for document use case: %w", err)
	}

	pointerRepository, err := c.PointerRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get pointer repository for document use case: %w", err)
	}

	contentStore, err := c.ContentStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get content store for document use case: %w", err)
	}

	baseUseCase := identityUseCase.NewDocumentUseCase(
		c.config,
		pointerRepository,
		contentStore,
		txManager,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for document use case: %w", err)
		}
		return identityUseCase.NewDocumentUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initDocumentHandler creates the document HTTP handler with all its dependencies.
func (c *Container) initDocumentHandler() (*identityHTTP.DocumentHandler, error) {
	documentUseCase, err := c.DocumentUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get document use case for document handler: %w", err)
	}

	logger := c.Logger()

	return identityHTTP.NewDocumentHandler(documentUseCase, logger), nil
}

package config

import "fmt"

// applyOperationDefaults fills unset operation fields from the global AI configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.BaseURL == "" {
		opCfg.BaseURL = c.AI.BaseURL
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.Timeout == nil {
		timeout := c.AI.Timeout
		opCfg.Timeout = &timeout
	}
	if opCfg.MaxTokens == nil {
		maxTokens := c.AI.MaxTokens
		opCfg.MaxTokens = &maxTokens
	}
	if opCfg.Temperature == nil {
		temperature := c.AI.Temperature
		opCfg.Temperature = &temperature
	}
	if opCfg.UseSystemPrompts == nil {
		useSystem := c.AI.UseSystemPrompts
		opCfg.UseSystemPrompts = &useSystem
	}
	if opCfg.JSONResponseFormat == nil {
		jsonFormat := c.AI.JSONResponseFormat
		opCfg.JSONResponseFormat = &jsonFormat
	}
}

// mergePromptTexts copies global prompt text and file paths into unset operation fields
func mergePromptTexts(dst *PromptTexts, global PromptTexts) {
	if dst.GenerateQuestions == "" {
		dst.GenerateQuestions = global.GenerateQuestions
	}
	if dst.GenerateQuestionsFile == "" {
		dst.GenerateQuestionsFile = global.GenerateQuestionsFile
	}
	if dst.EvaluateAnswer == "" {
		dst.EvaluateAnswer = global.EvaluateAnswer
	}
	if dst.EvaluateAnswerFile == "" {
		dst.EvaluateAnswerFile = global.EvaluateAnswerFile
	}
}

// GetGenerateConfig returns the AI configuration for question generation with fallback to global config
func (c *Config) GetGenerateConfig() OperationAIConfig {
	config := c.AI.Generate
	c.applyOperationDefaults(&config)
	mergePromptTexts(&config.CustomPrompts.SystemPrompts, c.AI.CustomPrompts.SystemPrompts)
	mergePromptTexts(&config.CustomPrompts.UserPrompts, c.AI.CustomPrompts.UserPrompts)
	return config
}

// GetEvaluateConfig returns the AI configuration for answer evaluation with fallback to global config
func (c *Config) GetEvaluateConfig() OperationAIConfig {
	config := c.AI.Evaluate
	c.applyOperationDefaults(&config)
	mergePromptTexts(&config.CustomPrompts.SystemPrompts, c.AI.CustomPrompts.SystemPrompts)
	mergePromptTexts(&config.CustomPrompts.UserPrompts, c.AI.CustomPrompts.UserPrompts)
	return config
}

// GetOperationConfig returns the merged configuration for a named operation
func (c *Config) GetOperationConfig(operation string) (OperationAIConfig, error) {
	switch operation {
	case OperationGenerate:
		return c.GetGenerateConfig(), nil
	case OperationEvaluate:
		return c.GetEvaluateConfig(), nil
	default:
		return OperationAIConfig{}, fmt.Errorf("unknown operation: %s", operation)
	}
}

// InlinePrompts returns the configured system and user prompt text for an operation
func (p PromptConfig) InlinePrompts(operation string) (system, user string) {
	switch operation {
	case OperationGenerate:
		return p.SystemPrompts.GenerateQuestions, p.UserPrompts.GenerateQuestions
	case OperationEvaluate:
		return p.SystemPrompts.EvaluateAnswer, p.UserPrompts.EvaluateAnswer
	}
	return "", ""
}

// PromptFiles returns the configured system and user prompt file paths for an operation
func (p PromptConfig) PromptFiles(operation string) (system, user string) {
	switch operation {
	case OperationGenerate:
		return p.SystemPrompts.GenerateQuestionsFile, p.UserPrompts.GenerateQuestionsFile
	case OperationEvaluate:
		return p.SystemPrompts.EvaluateAnswerFile, p.UserPrompts.EvaluateAnswerFile
	}
	return "", ""
}

// Copyright 2021 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gorse-io/filmrec/storage"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

var dataStorePrefixes = []string{
	storage.FilePrefix,
	storage.SQLitePrefix,
	storage.RedisPrefix,
	storage.RedissPrefix,
}

func validateDataStore(fl validator.FieldLevel) bool {
	source := fl.Field().String()
	return lo.ContainsBy(dataStorePrefixes, func(prefix string) bool {
		return strings.HasPrefix(source, prefix)
	})
}

// Validate checks the configuration and reports every violation at once.
func (config *Config) Validate() error {
	validate := validator.New()
	if err := validate.RegisterValidation("data_store", validateDataStore); err != nil {
		return errors.Trace(err)
	}

	// register English translations
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return errors.Trace(err)
	}
	if err := validate.RegisterTranslation("data_store", trans, func(ut ut.Translator) error {
		return ut.Add("data_store", "{0} must start with one of "+strings.Join(dataStorePrefixes, ", "), true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("data_store", fe.Field())
		return t
	}); err != nil {
		return errors.Trace(err)
	}

	err := validate.Struct(config)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			messages := lo.Map(validationErrors, func(fe validator.FieldError, _ int) string {
				return fe.Namespace() + ": " + fe.Translate(trans)
			})
			return errors.NotValidf("config (%s)", strings.Join(messages, "; "))
		}
		return errors.Trace(err)
	}
	return nil
}

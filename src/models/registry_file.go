// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package models

import (
	"fmt"
	"io"
	"os"

	"github.com/hexya-erp/quickboard/src/models/fieldtype"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// modelsFile is the structure of a YAML models file:
//
//	models:
//	  - name: sale.order
//	    description: Sales Order
//	    fields:
//	      - {name: id, type: integer}
//	      - {name: amount_total, type: monetary}
//	      - {name: tag_ids, type: many2many, stored: false}
type modelsFile struct {
	Models []modelEntry `yaml:"models"`
}

type modelEntry struct {
	ID          int64        `yaml:"id"`
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Table       string       `yaml:"table"`
	Fields      []fieldEntry `yaml:"fields"`
}

type fieldEntry struct {
	ID          int64  `yaml:"id"`
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Stored      *bool  `yaml:"stored"`
}

// LoadRegistryFile returns a MemoryRegistry populated from the YAML models file at path.
func LoadRegistryFile(path string) (*MemoryRegistry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open models file")
	}
	defer f.Close()
	reg, err := LoadRegistry(f)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load models file %s", path)
	}
	log.Info("Models file loaded", "path", path, "models", len(reg.order))
	return reg, nil
}

// LoadRegistry returns a MemoryRegistry populated from the YAML models read from r.
func LoadRegistry(r io.Reader) (*MemoryRegistry, error) {
	var mf modelsFile
	if err := yaml.NewDecoder(r).Decode(&mf); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "invalid YAML")
	}
	reg := NewMemoryRegistry()
	for _, me := range mf.Models {
		if me.Name == "" {
			return nil, fmt.Errorf("model without a name")
		}
		entity := NewEntity(me.Name)
		entity.ID = me.ID
		entity.Description = me.Description
		entity.Table = me.Table
		for _, fe := range me.Fields {
			ft := fieldtype.Type(fe.Type)
			if !ft.IsValid() {
				return nil, fmt.Errorf("unknown type '%s' for field %s of model %s", fe.Type, fe.Name, me.Name)
			}
			stored := true
			if fe.Stored != nil {
				stored = *fe.Stored
			}
			entity.AddField(&Field{
				ID:          fe.ID,
				Name:        fe.Name,
				Description: fe.Description,
				Type:        ft,
				Stored:      stored,
			})
		}
		if err := reg.Add(entity); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

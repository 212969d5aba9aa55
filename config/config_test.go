package config

import (
	"testing"

	"github.com/readalong-cli/readalong/filesystem"
	"github.com/readalong-cli/readalong/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			err := Setup()
			So(err, ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
			So(viper.GetInt(key.OverlayTickInterval), ShouldEqual, 120)
		})

		Convey("Should register every defined key", func() {
			So(len(Default), ShouldEqual, key.DefinedFieldsCount)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			result := EnvKeyReplacer.Replace("overlay.active_class")
			So(result, ShouldEqual, "overlay_active_class")
		})
	})

	Convey("Field", t, func() {
		f := Default[key.TUIPageSize]

		Convey("Env should carry the application prefix", func() {
			So(f.Env(), ShouldEqual, "READALONG_TUI_PAGE_SIZE")
		})

		Convey("typeName should reflect the default value", func() {
			So(f.typeName(), ShouldEqual, "int")
		})
	})
}

// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rules

import "fmt"

// standards are the canned check lists selectable with the `standard:` key.
// The domain lists mirror upstream AutoModerator's published standards.
var standards = map[string]Config{
	"image hosting sites": {
		{Key: "domain", Value: []any{
			"500px.com", "abload.de", "anony.ws", "deviantart.com",
			"deviantart.net", "fav.me", "fbcdn.net", "flickr.com",
			"forgifs.com", "giphy.com", "gfycat.com", "gifs.com",
			"gifsoup.com", "gyazo.com", "imageshack.us", "imgclean.com",
			"imgur.com", "instagr.am", "instagram.com", "i.reddituploads.com",
			"mediacru.sh", "media.tumblr.com", "min.us", "minus.com",
			"myimghost.com", "photobucket.com", "picsarus.com", "postimg.org",
			"puu.sh", "i.redd.it", "sli.mg", "staticflickr.com",
			"tinypic.com", "twitpic.com", "ibb.co",
		}},
	},
	"direct image links": {
		{Key: "url (regex)", Value: `\.(jpe?g|png|gifv?)(\?\S*)?$`},
	},
	"streaming sites": {
		{Key: "domain", Value: []any{
			"twitch.tv", "livestream.com", "azubu.tv", "hitbox.tv",
			"ustream.tv",
		}},
		{Key: "~domain", Value: "content.azubu.tv"},
	},
	"video hosting sites": {
		{Key: "domain", Value: []any{
			"youtube.com", "youtu.be", "vimeo.com", "dailymotion.com",
			"liveleak.com", "mediacru.sh", "worldstarhiphop.com",
			"gfycat.com", "vid.me",
		}},
	},
	"meme generator sites": {
		{Key: "domain", Value: []any{
			"9gag.com", "cheezburger.com", "chzbgr.com", "diylol.com",
			"dropmeme.com", "generatememes.com", "ifunny.co", "imgflip.com",
			"ismeme.com", "livememe.com", "makeameme.org",
			"meme-generator.org", "memecaptain.com", "memecenter.com",
			"memecloud.net", "memecreator.org", "memecrunch.com",
			"memedad.com", "memegen.com", "memegenerator.co",
			"memegenerator.net", "mememaker.net", "memesly.com",
			"memesnap.com", "minimemes.net", "onsizzle.com", "pressit.co",
			"qkme.me", "quickmeme.com", "ratemymeme.com", "sizzle.af",
			"troll.me", "weknowmemes.com", "winmeme.com", "wuzu.se",
		}},
	},
	"facebook links": {
		{Key: "url+body (regex)", Value: []any{
			`facebook\.com`, `fbcdn\.net`, `fb\.com`, `fb\.me`,
			`fbcdn-s?photos-.*?\.akamaihd\.net`,
		}},
	},
	"amazon affiliate links": {
		{Key: "url+body (regex)", Value: `(amazon|amzn)\.(com|co\.uk|ca)\S+?tag=`},
	},
	"crowdfunding sites": {
		{Key: "domain", Value: []any{
			"crowdrise.com", "kickstarter.com", "kck.st", "giveforward.com",
			"gogetfunding.com", "indiegogo.com", "igg.me", "generosity.com",
			"gofundme.com", "patreon.com", "prefundia.com", "razoo.com",
			"totalgiving.co.uk", "youcaring.com", "youcaring.net",
			"youcaring.org", "petcaring.com", "walacea.com",
		}},
	},
}

// expandStandards injects the canned entries for the config's `standard`
// key, if present. Unknown standard names fail the containing rule.
func expandStandards(cfg *Config) error {
	v, ok := cfg.Get("standard")
	if !ok {
		return nil
	}

	name := fmt.Sprint(v)
	std, ok := standards[name]
	if !ok {
		return fmt.Errorf("unknown standard %q", name)
	}

	for _, ent := range std {
		cfg.Set(ent.Key, ent.Value)
	}
	return nil
}

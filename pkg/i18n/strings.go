package i18n

// Plugin strings.
const (
	KeyPluginName        = "pluginname"
	KeyForum             = "forum"
	KeyForumToEval       = "forumtoeval"
	KeyForumToEvalHelp   = "forumtoeval_help"
	KeyForumToEvalDescr  = "forumtoevaldescr"
	KeyEnabled           = "enabled"
	KeyEnabledHelp       = "enabled_help"
	KeyDefault           = "default"
	KeyDefaultHelp       = "default_help"
	KeyDefaultPost       = "default_post"
	KeyForumFilename     = "forumfilename"
	KeyWordLimit         = "wordlimit"
	KeyWordLimitExceeded = "wordlimitexceeded"
	KeyNoForums          = "noforums"
)

// Forum rendering strings.
const (
	KeyEdit             = "edit"
	KeyDelete           = "delete"
	KeyReply            = "reply"
	KeyParent           = "parent"
	KeyPrune            = "prune"
	KeyPruneHeading     = "pruneheading"
	KeyMarkRead         = "markread"
	KeyMarkUnread       = "markunread"
	KeyHiddenForumPost  = "hiddenforumpost"
	KeySubjectHidden    = "forumsubjecthidden"
	KeyAuthorHidden     = "forumauthorhidden"
	KeyBodyHidden       = "forumbodyhidden"
	KeyPostByUser       = "postbyuser"
	KeyByNameOnDate     = "bynameondate"
	KeyReadTheRest      = "readtherest"
	KeyNumWords         = "numwords"
	KeyRepliesSoFar     = "repliessofar"
	KeyDiscussThisTopic = "discussthistopic"
	KeyAddToPortfolio   = "addtoportfolio"
	KeyRating           = "rating"
	KeyPictureOf        = "pictureof"
	KeyGroupPictureAlt  = "groupimage"
)

// english is the single canonical table. Every user-facing string the service
// emits is looked up here.
var english = map[string]string{
	KeyPluginName:        "Forum Discussion Submission",
	KeyForum:             "Forum Post Submission",
	KeyForumToEval:       "Select a forum",
	KeyForumToEvalHelp:   "If forum post submissions are enabled, students will be able to submit a pre-filled list of all of their existing posts and replies in the forum selected here.",
	KeyForumToEvalDescr:  "Forum to select submissions from",
	KeyEnabled:           "Forum Post Submission",
	KeyEnabledHelp:       "If enabled, students will be able to submit a pre-filled list of their own posts and replies from the forum chosen below. This submission type is not available unless you have already created a forum (other than the standard Announcements forum) in your course.",
	KeyDefault:           "Disabled by default",
	KeyDefaultHelp:       "If set, this submission method will be enabled by default for all new assignments.",
	KeyDefaultPost:       "You have not posted in the required forum yet.",
	KeyForumFilename:     "forum.html",
	KeyWordLimit:         "Word limit",
	KeyWordLimitExceeded: "The word limit for this assignment is {0} words and you are attempting to submit {1} words. Please review your submission and try again.",
	KeyNoForums:          "There are no forums in this course that can be used for submissions.",

	KeyEdit:             "Edit",
	KeyDelete:           "Delete",
	KeyReply:            "Reply",
	KeyParent:           "Show parent",
	KeyPrune:            "Split",
	KeyPruneHeading:     "Split the discussion and move this post to a new discussion",
	KeyMarkRead:         "Mark read",
	KeyMarkUnread:       "Mark unread",
	KeyHiddenForumPost:  "Hidden forum post",
	KeySubjectHidden:    "Subject (hidden)",
	KeyAuthorHidden:     "Author (hidden)",
	KeyBodyHidden:       "This post cannot be viewed by you, probably because you have not posted in the discussion, the maximum editing time hasn't passed yet, the discussion has not started or the discussion has expired.",
	KeyPostByUser:       "{0} by {1}",
	KeyByNameOnDate:     "by {0} - {1}",
	KeyReadTheRest:      "Read the rest of this topic",
	KeyNumWords:         "{0} words",
	KeyDiscussThisTopic: "Discuss this topic",
	KeyAddToPortfolio:   "Export to portfolio",
	KeyRating:           "Rating",
	KeyPictureOf:        "Picture of {0}",
	KeyGroupPictureAlt:  "Group image: {0}",
}

type cardinal struct {
	one   string
	other string
}

var englishCardinals = map[string]cardinal{
	KeyRepliesSoFar: {one: "{0} reply so far", other: "{0} replies so far"},
}
